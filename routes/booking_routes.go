package routes

import (
	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, h *handlers.Handler, auth middleware.TokenResolver) {
	bookings := app.Group(apiPrefix + "/bookings")
	bookings.Post("", middleware.Optional(auth), h.CreateBooking)
	bookings.Get("/me", middleware.Protected(auth), h.MyBookings)
	bookings.Get("/defaults", middleware.Optional(auth), h.BookingDefaults)
}
