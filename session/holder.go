package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Session is the authenticated identity. Token is the bearer credential issued on sign-in.
type Session struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Email       string    `json:"email"`
	Token       string    `json:"-"`
	TokenID     string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Name returns the display name, falling back to the email.
func (s Session) Name() string {
	if strings.TrimSpace(s.DisplayName) != "" {
		return s.DisplayName
	}
	return s.Email
}

// Authenticator is the credential backend. Failures should be *AuthError.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	UpdateDisplayName(ctx context.Context, s Session, name string) (Session, error)
	SignOut(ctx context.Context, s Session) error
}

// Listener receives the current session, or nil when there is none.
type Listener func(ctx context.Context, s *Session)

type subscriber struct {
	id int
	fn Listener
}

// Holder tracks at most one session and notifies subscribers on every transition.
//
// Listeners run synchronously in subscription order and may call Current, but
// must not call Subscribe or a transition method.
type Holder struct {
	auth Authenticator

	mu      sync.RWMutex
	current *Session

	notifyMu sync.Mutex
	subs     []subscriber
	nextID   int
}

func NewHolder(auth Authenticator) *Holder {
	return &Holder{auth: auth}
}

func (h *Holder) Current() (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return Session{}, false
	}
	return *h.current, true
}

// Subscribe registers fn and calls it immediately with the current state.
func (h *Holder) Subscribe(ctx context.Context, fn Listener) (unsubscribe func()) {
	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()

	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscriber{id: id, fn: fn})
	fn(ctx, h.snapshot())

	return func() {
		h.notifyMu.Lock()
		defer h.notifyMu.Unlock()
		for i, sub := range h.subs {
			if sub.id == id {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

func (h *Holder) Login(ctx context.Context, email, password string) (Session, error) {
	s, err := h.auth.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return Session{}, asAuthError(OpLogin, err)
	}
	h.set(ctx, &s)
	return s, nil
}

// Register creates the account, then sets the display name. When only the
// display name fails, the session is kept and ErrDisplayNameNotSet is returned with it.
func (h *Holder) Register(ctx context.Context, email, password, displayName string) (Session, error) {
	s, err := h.auth.SignUp(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return Session{}, asAuthError(OpRegister, err)
	}

	var nameErr error
	if name := strings.TrimSpace(displayName); name != "" {
		updated, err := h.auth.UpdateDisplayName(ctx, s, name)
		if err != nil {
			nameErr = errors.Wrap(ErrDisplayNameNotSet, err.Error())
		} else {
			s = updated
		}
	}

	h.set(ctx, &s)
	return s, nameErr
}

// Logout ends the session. On failure the session stays in place.
func (h *Holder) Logout(ctx context.Context) error {
	s, ok := h.Current()
	if !ok {
		return nil
	}
	if err := h.auth.SignOut(ctx, s); err != nil {
		return asAuthError(OpLogout, err)
	}
	h.set(ctx, nil)
	return nil
}

// Restore installs a session that was already authenticated elsewhere, e.g. from a verified token.
func (h *Holder) Restore(ctx context.Context, s Session) {
	h.set(ctx, &s)
}

// Clear drops the session without contacting the backend.
func (h *Holder) Clear(ctx context.Context) {
	h.set(ctx, nil)
}

func (h *Holder) set(ctx context.Context, s *Session) {
	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()

	h.mu.Lock()
	if s != nil {
		cp := *s
		s = &cp
	}
	h.current = s
	h.mu.Unlock()

	subs := make([]subscriber, len(h.subs))
	copy(subs, h.subs)
	for _, sub := range subs {
		sub.fn(ctx, h.snapshot())
	}
}

func (h *Holder) snapshot() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil
	}
	cp := *h.current
	return &cp
}

func asAuthError(op string, err error) error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		if authErr.Op == "" {
			authErr.Op = op
		}
		return authErr
	}
	return NewAuthError(Unknown, op, err)
}
