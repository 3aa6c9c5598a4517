package routes

import (
	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler, auth middleware.TokenResolver) {
	authGroup := app.Group(apiPrefix + "/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)
	authGroup.Post("/logout", middleware.Protected(auth), h.Logout)
	authGroup.Get("/me", middleware.Protected(auth), h.Me)
}
