package routes

import (
	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App, h *handlers.Handler) {
	app.Get("/health", h.Health)

	api := app.Group(apiPrefix)
	api.Get("/ws", h.UpgradeRealtime, h.Realtime())
}
