package session

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	password    string
	nameErr     error
	signOutErr  error
	signInCalls int
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (Session, error) {
	f.signInCalls++
	if email != "jane@example.com" {
		return Session{}, NewAuthError(UserNotFound, "", nil)
	}
	if password != f.password {
		return Session{}, NewAuthError(InvalidCredentials, "", nil)
	}
	return Session{UserID: "u1", Email: email, DisplayName: "Jane"}, nil
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (Session, error) {
	if len(password) < 6 {
		return Session{}, NewAuthError(WeakPassword, "", nil)
	}
	return Session{UserID: "u2", Email: email}, nil
}

func (f *fakeAuth) UpdateDisplayName(_ context.Context, s Session, name string) (Session, error) {
	if f.nameErr != nil {
		return Session{}, f.nameErr
	}
	s.DisplayName = name
	return s, nil
}

func (f *fakeAuth) SignOut(context.Context, Session) error {
	return f.signOutErr
}

func TestHolder_loginWrongPassword(t *testing.T) {
	h := NewHolder(&fakeAuth{password: "secret1"})

	_, err := h.Login(context.Background(), "jane@example.com", "nope")
	require.Error(t, err)
	assert.Equal(t, InvalidCredentials, KindOf(err))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, OpLogin, authErr.Op)
	assert.Equal(t, "Invalid email or password. Please try again.", authErr.Message())

	_, ok := h.Current()
	assert.False(t, ok)
}

func TestHolder_loginAndLogout(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(&fakeAuth{password: "secret1"})

	var seen []*Session
	unsubscribe := h.Subscribe(ctx, func(_ context.Context, s *Session) {
		seen = append(seen, s)
	})
	defer unsubscribe()

	s, err := h.Login(ctx, " jane@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)

	current, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, s, current)

	require.NoError(t, h.Logout(ctx))
	_, ok = h.Current()
	assert.False(t, ok)

	require.Len(t, seen, 3)
	assert.Nil(t, seen[0])
	require.NotNil(t, seen[1])
	assert.Equal(t, "u1", seen[1].UserID)
	assert.Nil(t, seen[2])
}

func TestHolder_logoutFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{password: "secret1", signOutErr: errors.New("boom")}
	h := NewHolder(auth)

	_, err := h.Login(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)

	err = h.Logout(ctx)
	require.Error(t, err)
	assert.Equal(t, Unknown, KindOf(err))

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "Logout failed.", authErr.Message())

	_, ok := h.Current()
	assert.True(t, ok)
}

func TestHolder_register(t *testing.T) {
	ctx := context.Background()

	t.Run("sets display name", func(t *testing.T) {
		h := NewHolder(&fakeAuth{})
		s, err := h.Register(ctx, "new@example.com", "secret1", " Ann ")
		require.NoError(t, err)
		assert.Equal(t, "Ann", s.DisplayName)
	})

	t.Run("weak password", func(t *testing.T) {
		h := NewHolder(&fakeAuth{})
		_, err := h.Register(ctx, "new@example.com", "123", "Ann")
		assert.Equal(t, WeakPassword, KindOf(err))
		_, ok := h.Current()
		assert.False(t, ok)
	})

	t.Run("display name failure keeps session", func(t *testing.T) {
		h := NewHolder(&fakeAuth{nameErr: errors.New("store down")})
		s, err := h.Register(ctx, "new@example.com", "secret1", "Ann")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDisplayNameNotSet))
		assert.Equal(t, "u2", s.UserID)

		current, ok := h.Current()
		require.True(t, ok)
		assert.Equal(t, "new@example.com", current.Name())
	})
}

func TestHolder_unsubscribe(t *testing.T) {
	ctx := context.Background()
	h := NewHolder(&fakeAuth{password: "secret1"})

	calls := 0
	unsubscribe := h.Subscribe(ctx, func(context.Context, *Session) { calls++ })
	unsubscribe()

	h.Restore(ctx, Session{UserID: "u9"})
	assert.Equal(t, 1, calls)
}

func TestAuthErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *AuthError
		want string
	}{
		{"user not found", NewAuthError(UserNotFound, OpLogin, nil), "No account found with this email address."},
		{"email in use", NewAuthError(EmailAlreadyInUse, OpRegister, nil), "This email is already registered. Please try logging in."},
		{"unknown login", NewAuthError(Unknown, OpLogin, nil), "Login failed. Please check your credentials."},
		{"unknown register", NewAuthError(Unknown, OpRegister, nil), "Registration failed. Please try again."},
		{"network", NewAuthError(NetworkFailure, OpLogin, nil), "Network error. Please check your connection."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Message())
		})
	}
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.Equal(t, "too_many_attempts", TooManyAttempts.String())
}
