package routes

import (
	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/gofiber/fiber/v2"
)

const apiPrefix = "/api/v1"

// Setup mounts every route group on app.
func Setup(app *fiber.App, h *handlers.Handler, auth middleware.TokenResolver) {
	PublicRoutes(app, h)
	AuthRoutes(app, h, auth)
	TeacherRoutes(app, h, auth)
	FavoriteRoutes(app, h, auth)
	BookingRoutes(app, h, auth)
	UploadRoutes(app, h, auth)
}
