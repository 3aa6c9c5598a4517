package session

import (
	"fmt"

	"github.com/pkg/errors"
)

// AuthErrorKind is the closed set of authentication failures.
type AuthErrorKind int

const (
	Unknown AuthErrorKind = iota
	InvalidCredentials
	UserNotFound
	EmailAlreadyInUse
	WeakPassword
	InvalidEmail
	AccountDisabled
	TooManyAttempts
	NetworkFailure
)

var kindNames = map[AuthErrorKind]string{
	Unknown:            "unknown",
	InvalidCredentials: "invalid_credentials",
	UserNotFound:       "user_not_found",
	EmailAlreadyInUse:  "email_already_in_use",
	WeakPassword:       "weak_password",
	InvalidEmail:       "invalid_email",
	AccountDisabled:    "account_disabled",
	TooManyAttempts:    "too_many_attempts",
	NetworkFailure:     "network_failure",
}

func (k AuthErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// Message is the text shown to the user.
func (k AuthErrorKind) Message() string {
	switch k {
	case InvalidCredentials:
		return "Invalid email or password. Please try again."
	case UserNotFound:
		return "No account found with this email address."
	case EmailAlreadyInUse:
		return "This email is already registered. Please try logging in."
	case WeakPassword:
		return "Password is too weak. Please use at least 6 characters."
	case InvalidEmail:
		return "Please enter a valid email address."
	case AccountDisabled:
		return "This account has been disabled."
	case TooManyAttempts:
		return "Too many failed login attempts. Please try again later."
	case NetworkFailure:
		return "Network error. Please check your connection."
	default:
		return "Something went wrong. Please try again."
	}
}

// Operation names used in AuthError.Op.
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
)

type AuthError struct {
	Kind AuthErrorKind
	Op   string
	Err  error
}

func NewAuthError(kind AuthErrorKind, op string, err error) *AuthError {
	return &AuthError{Kind: kind, Op: op, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message is the user-facing text. Unknown failures get a message that names the operation.
func (e *AuthError) Message() string {
	if e.Kind != Unknown {
		return e.Kind.Message()
	}
	switch e.Op {
	case OpLogin:
		return "Login failed. Please check your credentials."
	case OpRegister:
		return "Registration failed. Please try again."
	case OpLogout:
		return "Logout failed."
	default:
		return e.Kind.Message()
	}
}

// KindOf classifies any error; non-auth errors are Unknown.
func KindOf(err error) AuthErrorKind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return Unknown
}

// ErrDisplayNameNotSet is returned together with a valid session when the
// account was created but the display name could not be saved.
var ErrDisplayNameNotSet = errors.New("account created but display name was not saved")
