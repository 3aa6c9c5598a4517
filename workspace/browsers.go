package workspace

import (
	"sync"
	"time"

	"github.com/anjiri1684/learnlingo/catalog"
	"github.com/google/uuid"
)

const (
	// GuestTTL is how long an anonymous visitor's browsing state survives without use.
	GuestTTL = 30 * time.Minute

	// MaxGuests caps the number of anonymous browsers; the least recently used goes first.
	MaxGuests = 10000
)

type guest struct {
	browser *catalog.Browser
	seen    time.Time
}

// Browsers keeps catalog browsing state for visitors without a session, keyed
// by an opaque browse id handed out on first use.
type Browsers struct {
	mu    sync.Mutex
	ttl   time.Duration
	limit int
	now   func() time.Time
	items map[string]*guest
}

func NewBrowsers(ttl time.Duration, limit int) *Browsers {
	if ttl <= 0 {
		ttl = GuestTTL
	}
	if limit <= 0 {
		limit = MaxGuests
	}
	return &Browsers{ttl: ttl, limit: limit, now: time.Now, items: make(map[string]*guest)}
}

// Get returns the browser behind id. Unknown or empty ids get a new browser
// under a freshly issued id.
func (bs *Browsers) Get(id string) (*catalog.Browser, string) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	now := bs.now()
	if g, ok := bs.items[id]; ok && id != "" {
		g.seen = now
		return g.browser, id
	}
	if len(bs.items) >= bs.limit {
		bs.evictOldestLocked()
	}
	id = uuid.NewString()
	g := &guest{browser: catalog.NewBrowser(nil), seen: now}
	bs.items[id] = g
	return g.browser, id
}

func (bs *Browsers) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, g := range bs.items {
		if oldestID == "" || g.seen.Before(oldest) {
			oldestID, oldest = id, g.seen
		}
	}
	delete(bs.items, oldestID)
}

// Prune drops browsers idle for longer than the TTL and returns how many went.
func (bs *Browsers) Prune() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	cutoff := bs.now().Add(-bs.ttl)
	n := 0
	for id, g := range bs.items {
		if g.seen.Before(cutoff) {
			delete(bs.items, id)
			n++
		}
	}
	return n
}

func (bs *Browsers) Len() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return len(bs.items)
}
