package handlers

import (
	"github.com/anjiri1684/learnlingo/booking"
	"github.com/anjiri1684/learnlingo/catalog"
	"github.com/anjiri1684/learnlingo/database"
	"github.com/anjiri1684/learnlingo/favorites"
	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/session"
	hub "github.com/anjiri1684/learnlingo/websocket"
	"github.com/anjiri1684/learnlingo/workspace"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// TokenParser verifies raw bearer tokens for the websocket upgrade.
type TokenParser interface {
	ParseToken(raw string) (session.Session, error)
}

// Handler serves the JSON API. Every dependency is injected by the composition root.
type Handler struct {
	Registry *workspace.Registry
	Catalog  *catalog.Engine
	Bookings *booking.Flow
	Tokens   TokenParser
	Hub      *hub.Hub
	Uploads  *UploadSigner
	Log      logger.Logger
}

// ErrorHandler renders every error as {"status":"error","code","message"}.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		code, body := describe(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", err, map[string]interface{}{"path": c.Path(), "method": c.Method()})
		}
		body["status"] = "error"
		body["code"] = code
		return c.Status(code).JSON(body)
	}
}

func describe(err error) (int, fiber.Map) {
	var (
		authErr  *session.AuthError
		valErr   *booking.ValidationError
		fiberErr *fiber.Error
	)
	switch {
	case errors.As(err, &authErr):
		return authStatus(authErr.Kind), fiber.Map{"message": authErr.Message(), "kind": authErr.Kind.String()}
	case errors.As(err, &valErr):
		return fiber.StatusBadRequest, fiber.Map{"message": "Please correct the highlighted fields.", "fields": valErr.Fields}
	case errors.Is(err, booking.ErrBookingFailed):
		return fiber.StatusBadGateway, fiber.Map{"message": booking.FailureMessage}
	case errors.Is(err, catalog.ErrInvalidCriteria), errors.Is(err, favorites.ErrInvalidID):
		return fiber.StatusBadRequest, fiber.Map{"message": err.Error()}
	case errors.Is(err, favorites.ErrNoSession), errors.Is(err, booking.ErrNoSession):
		return fiber.StatusUnauthorized, fiber.Map{"message": "Please log in to continue."}
	case errors.Is(err, database.ErrNotFound):
		return fiber.StatusNotFound, fiber.Map{"message": "Not found"}
	case errors.Is(err, database.ErrRemoteUnavailable):
		return fiber.StatusServiceUnavailable, fiber.Map{"message": "Service temporarily unavailable. Please try again."}
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiber.Map{"message": fiberErr.Message}
	default:
		return fiber.StatusInternalServerError, fiber.Map{"message": "Internal Server Error"}
	}
}

func authStatus(kind session.AuthErrorKind) int {
	switch kind {
	case session.InvalidCredentials, session.UserNotFound:
		return fiber.StatusUnauthorized
	case session.WeakPassword, session.InvalidEmail:
		return fiber.StatusBadRequest
	case session.AccountDisabled:
		return fiber.StatusForbidden
	case session.EmailAlreadyInUse:
		return fiber.StatusConflict
	case session.TooManyAttempts:
		return fiber.StatusTooManyRequests
	case session.NetworkFailure:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
