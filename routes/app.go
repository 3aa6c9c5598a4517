package routes

import (
	"time"

	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/anjiri1684/learnlingo/logger"
	"github.com/gofiber/fiber/v2"
)

// NewApp returns a fiber app with the JSON error handler installed.
func NewApp(appName string, log logger.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       appName,
		CaseSensitive: true,
		StrictRouting: false,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler(log),
	})
}
