// Package workspace owns the per-user state containers: one session holder, one
// favorites synchronizer and the catalog browsing state per signed-in user, plus
// browsing state for anonymous visitors.
package workspace

import (
	"context"
	"sort"
	"sync"

	"github.com/anjiri1684/learnlingo/catalog"
	"github.com/anjiri1684/learnlingo/favorites"
	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/session"
	"github.com/pkg/errors"
)

type Client struct {
	UserID    string
	Session   *session.Holder
	Favorites *favorites.Synchronizer

	// Teachers and FavoriteTeachers page through the catalog and the favorites page.
	Teachers         *catalog.Browser
	FavoriteTeachers *catalog.Browser

	mu     sync.Mutex
	unsubs []func()
	closed bool
}

// onClose runs fn when the client is closed, or right away if it already is.
func (c *Client) onClose(fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		fn()
		return
	}
	c.unsubs = append(c.unsubs, fn)
	c.mu.Unlock()
}

func (c *Client) close() {
	c.mu.Lock()
	c.closed = true
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()
	for _, fn := range unsubs {
		fn()
	}
}

// SessionFunc is told when a user's session appears or goes away.
type SessionFunc func(userID string, present bool)

type Registry struct {
	auth  session.Authenticator
	gw    favorites.Gateway
	cache favorites.Cache
	log   logger.Logger

	guests *Browsers

	mu            sync.Mutex
	clients       map[string]*Client
	favoriteHooks []favorites.ChangeFunc
	sessionHooks  []SessionFunc
}

func NewRegistry(auth session.Authenticator, gw favorites.Gateway, cache favorites.Cache, log logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		auth:    auth,
		gw:      gw,
		cache:   cache,
		log:     log,
		guests:  NewBrowsers(GuestTTL, MaxGuests),
		clients: make(map[string]*Client),
	}
}

// Guest returns the catalog browser for an anonymous visitor and its browse id.
func (r *Registry) Guest(browseID string) (*catalog.Browser, string) {
	return r.guests.Get(browseID)
}

// PruneGuests forgets idle anonymous browsers.
func (r *Registry) PruneGuests() int {
	return r.guests.Prune()
}

// OnFavoritesChange registers fn on every client created afterwards.
func (r *Registry) OnFavoritesChange(fn favorites.ChangeFunc) {
	r.mu.Lock()
	r.favoriteHooks = append(r.favoriteHooks, fn)
	r.mu.Unlock()
}

func (r *Registry) OnSessionChange(fn SessionFunc) {
	r.mu.Lock()
	r.sessionHooks = append(r.sessionHooks, fn)
	r.mu.Unlock()
}

func (r *Registry) Login(ctx context.Context, email, password string) (*Client, session.Session, error) {
	h := session.NewHolder(r.auth)
	s, err := h.Login(ctx, email, password)
	if err != nil {
		return nil, session.Session{}, err
	}
	return r.adopt(ctx, h, s), s, nil
}

// Register signs the user up. ErrDisplayNameNotSet comes back together with a usable client.
func (r *Registry) Register(ctx context.Context, email, password, displayName string) (*Client, session.Session, error) {
	h := session.NewHolder(r.auth)
	s, err := h.Register(ctx, email, password, displayName)
	if err != nil && !errors.Is(err, session.ErrDisplayNameNotSet) {
		return nil, session.Session{}, err
	}
	return r.adopt(ctx, h, s), s, err
}

// Resume returns the client for an already verified session, creating it if needed.
func (r *Registry) Resume(ctx context.Context, s session.Session) *Client {
	r.mu.Lock()
	c, ok := r.clients[s.UserID]
	r.mu.Unlock()
	if ok {
		if cur, present := c.Session.Current(); !present || cur.TokenID != s.TokenID {
			c.Session.Restore(ctx, s)
		}
		return c
	}

	h := session.NewHolder(r.auth)
	h.Restore(ctx, s)
	return r.adopt(ctx, h, s)
}

// Logout revokes s and drops the user's client.
func (r *Registry) Logout(ctx context.Context, s session.Session) error {
	r.mu.Lock()
	c, ok := r.clients[s.UserID]
	r.mu.Unlock()

	var h *session.Holder
	if ok {
		h = c.Session
	} else {
		h = session.NewHolder(r.auth)
	}
	h.Restore(ctx, s)
	if err := h.Logout(ctx); err != nil {
		return err
	}

	if ok {
		r.mu.Lock()
		if r.clients[s.UserID] == c {
			delete(r.clients, s.UserID)
		}
		r.mu.Unlock()
		c.close()
	}
	r.log.Info("user logged out", logger.Person{ID: s.UserID, Email: s.Email})
	return nil
}

func (r *Registry) Get(userID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[userID]
	return c, ok
}

// UserIDs lists users with a live client, sorted.
func (r *Registry) UserIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReconcileReport sums a Reconcile pass over all clients.
type ReconcileReport struct {
	Clients   int
	Remaining int
	Failed    int
}

// Reconcile replays pending favorite writes for every client.
func (r *Registry) Reconcile(ctx context.Context) ReconcileReport {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	var report ReconcileReport
	for _, c := range clients {
		report.Clients++
		remaining, err := c.Favorites.Reconcile(ctx)
		report.Remaining += remaining
		if err != nil && !errors.Is(err, favorites.ErrNoSession) {
			report.Failed++
			r.log.Warn("favorites reconcile failed", err, logger.Person{ID: c.UserID})
		}
	}
	return report
}

// adopt installs h as the user's holder unless a client already exists, in
// which case the session is handed over to it.
func (r *Registry) adopt(ctx context.Context, h *session.Holder, s session.Session) *Client {
	r.mu.Lock()
	if c, ok := r.clients[s.UserID]; ok {
		r.mu.Unlock()
		c.Session.Restore(ctx, s)
		return c
	}
	favs := favorites.New(r.gw, r.cache, r.log)
	for _, fn := range r.favoriteHooks {
		favs.OnChange(fn)
	}
	sessionHooks := make([]SessionFunc, len(r.sessionHooks))
	copy(sessionHooks, r.sessionHooks)
	c := &Client{
		UserID:           s.UserID,
		Session:          h,
		Favorites:        favs,
		Teachers:         catalog.NewBrowser(nil),
		FavoriteTeachers: catalog.NewBrowser(nil),
	}
	r.clients[s.UserID] = c
	r.mu.Unlock()

	// a Logout may close c before the subscriptions below are in place;
	// onClose then drops them immediately
	userID := s.UserID
	c.onClose(h.Subscribe(ctx, favs.Bind))
	c.onClose(h.Subscribe(ctx, func(_ context.Context, cur *session.Session) {
		for _, fn := range sessionHooks {
			fn(userID, cur != nil)
		}
	}))
	return c
}
