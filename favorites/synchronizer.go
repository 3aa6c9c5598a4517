package favorites

import (
	"context"
	"sort"
	"sync"

	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/anjiri1684/learnlingo/session"
	"github.com/pkg/errors"
)

var (
	ErrNoSession = errors.New("favorites require a signed-in user")
	ErrInvalidID = errors.New("invalid teacher id")
)

type State int

const (
	Unloaded State = iota
	Loading
	Loaded
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "unloaded"
	}
}

// Source tells where the loaded set came from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceCache
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceCache:
		return "cache"
	default:
		return "none"
	}
}

// Gateway is the part of the store the synchronizer writes through.
type Gateway interface {
	GetFavoriteIDs(ctx context.Context, userID string) ([]string, error)
	SetFavorite(ctx context.Context, userID, teacherID string, present bool) error
}

// Result of a mutation. Degraded means the remote write failed and the change
// only lives in memory and in the local cache.
type Result struct {
	Favorite bool `json:"favorite"`
	Degraded bool `json:"degraded"`
}

// PendingWrite is a local change the store has not acknowledged yet.
type PendingWrite struct {
	ID      string `json:"id"`
	Present bool   `json:"present"`
}

type Snapshot struct {
	UserID  string         `json:"user_id,omitempty"`
	State   State          `json:"-"`
	Source  Source         `json:"-"`
	IDs     []string       `json:"ids"`
	Pending []PendingWrite `json:"pending"`
}

// ChangeFunc receives the favorite ids after every change.
type ChangeFunc func(userID string, ids []string)

// entry with present=false and pending=true is an unacknowledged removal.
type entry struct {
	present bool
	pending bool
	seq     uint64
}

// Synchronizer keeps one user's favorite set in step with the store and the local cache.
//
// Writes are optimistic and never rolled back: when the store rejects one, the
// entry is flagged pending until Reconcile gets it through.
type Synchronizer struct {
	gw    Gateway
	cache Cache
	log   logger.Logger

	mu      sync.Mutex
	state   State
	source  Source
	userID  string
	entries map[string]*entry
	epoch   uint64
	seq     uint64
	version uint64
	hooks   []ChangeFunc

	cacheMu      sync.Mutex
	cacheVersion uint64
}

func New(gw Gateway, cache Cache, log logger.Logger) *Synchronizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Synchronizer{
		gw:      gw,
		cache:   cache,
		log:     log,
		entries: make(map[string]*entry),
	}
}

// OnChange registers fn to be called after loads, resets and mutations.
func (s *Synchronizer) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Bind follows session transitions; it has the shape of a session.Listener.
// A new session triggers a load, an absent one resets to Unloaded.
func (s *Synchronizer) Bind(ctx context.Context, sess *session.Session) {
	s.mu.Lock()
	if sess == nil {
		if s.state == Unloaded && s.userID == "" {
			s.mu.Unlock()
			return
		}
		prev := s.userID
		s.epoch++
		s.state = Unloaded
		s.source = SourceNone
		s.userID = ""
		s.entries = make(map[string]*entry)
		hooks := s.hooksLocked()
		s.mu.Unlock()
		notify(hooks, prev, nil)
		return
	}
	if sess.UserID == s.userID && s.state != Unloaded {
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	userID := sess.UserID
	s.state = Loading
	s.source = SourceNone
	s.userID = userID
	s.entries = make(map[string]*entry)
	s.mu.Unlock()

	s.load(ctx, userID, epoch)
}

// Reload fetches the set again for the current user.
func (s *Synchronizer) Reload(ctx context.Context) error {
	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		return ErrNoSession
	}
	s.epoch++
	epoch := s.epoch
	userID := s.userID
	s.state = Loading
	for id, e := range s.entries {
		if !e.pending {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	s.load(ctx, userID, epoch)
	return nil
}

func (s *Synchronizer) load(ctx context.Context, userID string, epoch uint64) {
	source := SourceRemote
	ids, err := s.gw.GetFavoriteIDs(ctx, userID)
	if err != nil {
		s.log.Warn("favorites: remote load failed, using local cache (offline mode)", err, logger.Person{ID: userID})
		source = SourceCache
		ids, err = s.cache.Load(Key(userID))
		if err != nil {
			if !errors.Is(err, ErrCacheMiss) {
				s.log.Warn("favorites: local cache unreadable", err, logger.Person{ID: userID})
			}
			ids = nil
		}
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	loaded := make(map[string]*entry, len(ids))
	for _, raw := range ids {
		if id := models.NormalizeID(raw); id != "" {
			loaded[id] = &entry{present: true}
		}
	}
	// changes made while loading win over what was fetched
	for id, e := range s.entries {
		if e.present || e.pending {
			loaded[id] = e
		} else {
			delete(loaded, id)
		}
	}
	s.entries = loaded
	s.state = Loaded
	s.source = source
	version, snapshot := s.cacheSnapshotLocked()
	hooks := s.hooksLocked()
	s.mu.Unlock()

	s.storeCache(version, userID, snapshot)
	notify(hooks, userID, snapshot)
}

func (s *Synchronizer) Add(ctx context.Context, id interface{}) (Result, error) {
	return s.mutate(ctx, id, func(bool) bool { return true })
}

func (s *Synchronizer) Remove(ctx context.Context, id interface{}) (Result, error) {
	return s.mutate(ctx, id, func(bool) bool { return false })
}

// Toggle adds the id when absent and removes it when present.
func (s *Synchronizer) Toggle(ctx context.Context, id interface{}) (Result, error) {
	return s.mutate(ctx, id, func(current bool) bool { return !current })
}

func (s *Synchronizer) mutate(ctx context.Context, rawID interface{}, want func(current bool) bool) (Result, error) {
	id := models.NormalizeID(rawID)
	if id == "" {
		return Result{}, ErrInvalidID
	}

	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		return Result{}, ErrNoSession
	}
	userID := s.userID
	epoch := s.epoch

	e := s.entries[id]
	current := e != nil && e.present
	present := want(current)

	// already settled in the store, only the cache needs touching
	settled := s.state == Loaded && current == present && (e == nil || !e.pending)
	var seq uint64
	if !settled {
		s.seq++
		seq = s.seq
		s.entries[id] = &entry{present: present, pending: e != nil && e.pending, seq: seq}
	}
	s.mu.Unlock()

	var writeErr error
	if !settled {
		writeErr = s.gw.SetFavorite(ctx, userID, id, present)
		if writeErr != nil {
			s.log.Warn("favorites: remote write failed, keeping local change", writeErr,
				map[string]interface{}{"teacher_id": id, "present": present}, logger.Person{ID: userID})
		}
	}

	s.mu.Lock()
	if s.epoch == epoch && !settled {
		if cur, ok := s.entries[id]; ok && cur.seq == seq {
			cur.pending = writeErr != nil
			// removals stay as entries while loading so the merge can apply them
			if !cur.present && !cur.pending && s.state == Loaded {
				delete(s.entries, id)
			}
		}
	}
	var (
		version  uint64
		snapshot []string
		hooks    []ChangeFunc
	)
	sameUser := s.userID == userID
	if sameUser {
		version, snapshot = s.cacheSnapshotLocked()
		hooks = s.hooksLocked()
	}
	s.mu.Unlock()

	if sameUser {
		s.storeCache(version, userID, snapshot)
		notify(hooks, userID, snapshot)
	}
	return Result{Favorite: present, Degraded: writeErr != nil}, nil
}

// Reconcile replays pending writes. It returns how many are still pending.
func (s *Synchronizer) Reconcile(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		return 0, ErrNoSession
	}
	if s.state != Loaded {
		s.mu.Unlock()
		return 0, nil
	}
	userID := s.userID
	epoch := s.epoch
	type job struct {
		id      string
		present bool
		seq     uint64
	}
	var jobs []job
	for id, e := range s.entries {
		if e.pending {
			jobs = append(jobs, job{id: id, present: e.present, seq: e.seq})
		}
	}
	s.mu.Unlock()

	if len(jobs) == 0 {
		return 0, nil
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].seq < jobs[j].seq })

	var firstErr error
	done := make(map[string]uint64, len(jobs))
	for _, j := range jobs {
		if err := s.gw.SetFavorite(ctx, userID, j.id, j.present); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		done[j.id] = j.seq
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return 0, firstErr
	}
	for id, seq := range done {
		if e, ok := s.entries[id]; ok && e.seq == seq {
			e.pending = false
			if !e.present {
				delete(s.entries, id)
			}
		}
	}
	remaining := 0
	for _, e := range s.entries {
		if e.pending {
			remaining++
		}
	}
	version, snapshot := s.cacheSnapshotLocked()
	hooks := s.hooksLocked()
	s.mu.Unlock()

	s.storeCache(version, userID, snapshot)
	if len(done) > 0 {
		s.log.Info("favorites: reconciled pending writes", map[string]interface{}{"user_id": userID, "synced": len(done), "remaining": remaining})
		notify(hooks, userID, snapshot)
	}
	return remaining, firstErr
}

// IsFavorite accepts the id in string or numeric form.
func (s *Synchronizer) IsFavorite(id interface{}) bool {
	key := models.NormalizeID(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return ok && e.present
}

// IDs returns the favorite ids, sorted.
func (s *Synchronizer) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idsLocked()
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Synchronizer) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Synchronizer) Pending() []PendingWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		UserID:  s.userID,
		State:   s.state,
		Source:  s.source,
		IDs:     s.idsLocked(),
		Pending: s.pendingLocked(),
	}
}

func (s *Synchronizer) idsLocked() []string {
	ids := make([]string, 0, len(s.entries))
	for id, e := range s.entries {
		if e.present {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *Synchronizer) pendingLocked() []PendingWrite {
	out := []PendingWrite{}
	for id, e := range s.entries {
		if e.pending {
			out = append(out, PendingWrite{ID: id, Present: e.present})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Synchronizer) cacheSnapshotLocked() (uint64, []string) {
	s.version++
	return s.version, s.idsLocked()
}

func (s *Synchronizer) hooksLocked() []ChangeFunc {
	hooks := make([]ChangeFunc, len(s.hooks))
	copy(hooks, s.hooks)
	return hooks
}

// storeCache drops snapshots older than the last one written.
func (s *Synchronizer) storeCache(version uint64, userID string, ids []string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if version <= s.cacheVersion {
		return
	}
	s.cacheVersion = version
	if err := s.cache.Store(Key(userID), ids); err != nil {
		s.log.Warn("favorites: local cache write failed", err, logger.Person{ID: userID})
	}
}

func notify(hooks []ChangeFunc, userID string, ids []string) {
	for _, fn := range hooks {
		fn(userID, ids)
	}
}
