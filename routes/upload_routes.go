package routes

import (
	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler, auth middleware.TokenResolver) {
	uploads := app.Group(apiPrefix+"/uploads", middleware.Protected(auth))
	uploads.Get("/avatar-signature", h.AvatarSignature)
}
