package handlers

import (
	"github.com/anjiri1684/learnlingo/booking"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/gofiber/fiber/v2"
)

type CreateBookingRequest struct {
	TeacherID string `json:"teacher_id"`
	booking.Form
}

// CreateBooking records a trial lesson request; signing in is optional.
func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if req.TeacherID == "" {
		return &booking.ValidationError{Fields: map[string]string{"teacher_id": "this field is required"}}
	}
	if err := h.Bookings.Validate(req.Form); err != nil {
		return err
	}

	teacher, _, err := h.Catalog.Get(c.UserContext(), req.TeacherID)
	if err != nil {
		return err
	}

	b, err := h.Bookings.Submit(c.UserContext(), teacher, middleware.CurrentSession(c), req.Form)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"booking": b,
		"message": booking.SuccessMessage(teacher),
	})
}

func (h *Handler) MyBookings(c *fiber.Ctx) error {
	bookings, err := h.Bookings.History(c.UserContext(), middleware.CurrentSession(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

// BookingDefaults prefills the booking form from the session.
func (h *Handler) BookingDefaults(c *fiber.Ctx) error {
	return c.JSON(booking.Defaults(middleware.CurrentSession(c)))
}
