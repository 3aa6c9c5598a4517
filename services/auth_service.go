package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/learnlingo/database"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/anjiri1684/learnlingo/session"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService is the session.Authenticator backed by a UserStore, bcrypt and HS256 tokens.
type AuthService struct {
	users    database.UserStore
	secret   []byte
	ttl      time.Duration
	validate *validator.Validate
	cost     int
	now      func() time.Time

	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewAuthService(users database.UserStore, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		ttl:      ttl,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		revoked:  make(map[string]time.Time),
	}
}

func (a *AuthService) SigningKey() []byte {
	return a.secret
}

func (a *AuthService) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	if err := a.validate.Var(email, "required,email"); err != nil {
		return session.Session{}, session.NewAuthError(session.InvalidEmail, session.OpLogin, nil)
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return session.Session{}, session.NewAuthError(session.UserNotFound, session.OpLogin, nil)
	}
	if err != nil {
		return session.Session{}, storeError(session.OpLogin, err)
	}

	if !user.IsActive {
		return session.Session{}, session.NewAuthError(session.AccountDisabled, session.OpLogin, nil)
	}
	now := a.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return session.Session{}, session.NewAuthError(session.TooManyAttempts, session.OpLogin, nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		user.FailedAttempts++
		kind := session.InvalidCredentials
		if user.FailedAttempts >= MaxFailedAttempts {
			until := now.Add(LockoutDuration)
			user.LockedUntil = &until
			user.FailedAttempts = 0
			kind = session.TooManyAttempts
		}
		if err := a.users.UpdateUser(ctx, &user); err != nil {
			return session.Session{}, storeError(session.OpLogin, err)
		}
		return session.Session{}, session.NewAuthError(kind, session.OpLogin, nil)
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.FailedAttempts = 0
		user.LockedUntil = nil
		if err := a.users.UpdateUser(ctx, &user); err != nil {
			return session.Session{}, storeError(session.OpLogin, err)
		}
	}

	return a.issue(user, session.OpLogin)
}

func (a *AuthService) SignUp(ctx context.Context, email, password string) (session.Session, error) {
	if err := a.validate.Var(email, "required,email"); err != nil {
		return session.Session{}, session.NewAuthError(session.InvalidEmail, session.OpRegister, nil)
	}
	if len(password) < MinPasswordLength {
		return session.Session{}, session.NewAuthError(session.WeakPassword, session.OpRegister, nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return session.Session{}, session.NewAuthError(session.Unknown, session.OpRegister, errors.Wrap(err, "failed to hash password"))
	}

	user := models.User{
		Email:    email,
		Password: string(hashedPassword),
		IsActive: true,
	}
	err = a.users.CreateUser(ctx, &user)
	if errors.Is(err, database.ErrDuplicate) {
		return session.Session{}, session.NewAuthError(session.EmailAlreadyInUse, session.OpRegister, nil)
	}
	if err != nil {
		return session.Session{}, storeError(session.OpRegister, err)
	}

	return a.issue(user, session.OpRegister)
}

// UpdateDisplayName saves the name and reissues the token so its claims carry it.
func (a *AuthService) UpdateDisplayName(ctx context.Context, s session.Session, name string) (session.Session, error) {
	user, err := a.users.GetUserByID(ctx, s.UserID)
	if err != nil {
		return session.Session{}, storeError(session.OpRegister, err)
	}
	user.DisplayName = strings.TrimSpace(name)
	if err := a.users.UpdateUser(ctx, &user); err != nil {
		return session.Session{}, storeError(session.OpRegister, err)
	}
	if s.TokenID != "" {
		a.revoke(s.TokenID, s.ExpiresAt)
	}
	return a.issue(user, session.OpRegister)
}

// SignOut revokes the session's token until it would have expired anyway.
func (a *AuthService) SignOut(_ context.Context, s session.Session) error {
	if s.TokenID == "" {
		return session.NewAuthError(session.Unknown, session.OpLogout, errors.New("session has no token id"))
	}
	a.revoke(s.TokenID, s.ExpiresAt)
	return nil
}

func (a *AuthService) IsRevoked(tokenID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.revoked[tokenID]
	return ok
}

// PruneRevoked forgets revocations whose tokens have expired.
func (a *AuthService) PruneRevoked() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	n := 0
	for id, exp := range a.revoked {
		if now.After(exp) {
			delete(a.revoked, id)
			n++
		}
	}
	return n
}

func (a *AuthService) revoke(tokenID string, exp time.Time) {
	if exp.IsZero() {
		exp = a.now().Add(a.ttl)
	}
	a.mu.Lock()
	a.revoked[tokenID] = exp
	a.mu.Unlock()
}

func (a *AuthService) issue(user models.User, op string) (session.Session, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	jti := uuid.NewString()

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"name":    user.DisplayName,
		"jti":     jti,
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString(a.secret)
	if err != nil {
		return session.Session{}, session.NewAuthError(session.Unknown, op, errors.Wrap(err, "failed to create token"))
	}

	return session.Session{
		UserID:      user.ID.String(),
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Token:       t,
		TokenID:     jti,
		ExpiresAt:   time.Unix(exp.Unix(), 0),
	}, nil
}

// ResolveToken turns a verified token into a session, rejecting revoked ones.
func (a *AuthService) ResolveToken(token *jwt.Token) (session.Session, error) {
	if token == nil || !token.Valid {
		return session.Session{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return session.Session{}, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	jti, _ := claims["jti"].(string)
	if userID == "" || jti == "" || a.IsRevoked(jti) {
		return session.Session{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	s := session.Session{
		UserID:      userID,
		DisplayName: name,
		Email:       email,
		Token:       token.Raw,
		TokenID:     jti,
	}
	if exp, ok := claims["exp"].(float64); ok {
		s.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return s, nil
}

// ParseToken verifies a raw bearer token, for transports that bypass the JWT middleware.
func (a *AuthService) ParseToken(raw string) (session.Session, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return session.Session{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	return a.ResolveToken(token)
}

func storeError(op string, err error) error {
	if errors.Is(err, database.ErrRemoteUnavailable) {
		return session.NewAuthError(session.NetworkFailure, op, err)
	}
	return session.NewAuthError(session.Unknown, op, err)
}
