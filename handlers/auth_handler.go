package handlers

import (
	"fmt"

	"github.com/anjiri1684/learnlingo/favorites"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/anjiri1684/learnlingo/session"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	Session session.Session `json:"session"`
	Message string          `json:"message"`
	Warning string          `json:"warning,omitempty"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	_, s, err := h.Registry.Register(c.UserContext(), req.Email, req.Password, req.DisplayName)
	resp := AuthResponse{Token: s.Token, Session: s}
	switch {
	case err == nil:
	case errors.Is(err, session.ErrDisplayNameNotSet):
		resp.Warning = "Your account was created, but we could not save your name."
	default:
		return err
	}
	resp.Message = fmt.Sprintf("Welcome to LearnLingo, %s!", s.Name())
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	_, s, err := h.Registry.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(AuthResponse{
		Token:   s.Token,
		Session: s,
		Message: fmt.Sprintf("Welcome back, %s!", s.Name()),
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return favorites.ErrNoSession
	}
	if err := h.Registry.Logout(c.UserContext(), *s); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "You have been logged out successfully."})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return favorites.ErrNoSession
	}
	client := h.Registry.Resume(c.UserContext(), *s)
	cur, _ := client.Session.Current()
	return c.JSON(fiber.Map{"session": cur})
}
