package middleware

import (
	"strings"

	"github.com/anjiri1684/learnlingo/session"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const (
	tokenKey = "user"

	// SessionKey is the Locals key holding the *session.Session.
	SessionKey = "session"
)

// TokenResolver turns a verified JWT into a session.
type TokenResolver interface {
	SigningKey() []byte
	ResolveToken(token *jwt.Token) (session.Session, error)
}

// Protected rejects requests without a valid, unrevoked bearer token.
func Protected(auth TokenResolver) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     auth.SigningKey(),
		ContextKey:     tokenKey,
		ErrorHandler:   jwtError,
		SuccessHandler: resolve(auth),
	})
}

// Optional resolves the session when an Authorization header is sent and lets
// anonymous requests through.
func Optional(auth TokenResolver) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     auth.SigningKey(),
		ContextKey:     tokenKey,
		ErrorHandler:   jwtError,
		SuccessHandler: resolve(auth),
		Filter: func(c *fiber.Ctx) bool {
			return strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == ""
		},
	})
}

func resolve(auth TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals(tokenKey).(*jwt.Token)
		if !ok {
			return unauthorized(c)
		}
		s, err := auth.ResolveToken(token)
		if err != nil {
			return unauthorized(c)
		}
		c.Locals(SessionKey, &s)
		return c.Next()
	}
}

// CurrentSession returns the request's session, or nil for anonymous requests.
func CurrentSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals(SessionKey).(*session.Session)
	return s
}

// SetSession attaches s to the request, for transports that authenticate on their own.
func SetSession(c *fiber.Ctx, s *session.Session) {
	c.Locals(SessionKey, s)
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "code": fiber.StatusBadRequest, "message": "Missing or malformed JWT"})
	}
	return unauthorized(c)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "code": fiber.StatusUnauthorized, "message": "Invalid or expired JWT"})
}
