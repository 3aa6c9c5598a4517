package routes

import (
	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/gofiber/fiber/v2"
)

func TeacherRoutes(app *fiber.App, h *handlers.Handler, auth middleware.TokenResolver) {
	teachers := app.Group(apiPrefix+"/teachers", middleware.Optional(auth))
	teachers.Get("", h.ListTeachers)
	teachers.Post("/more", h.LoadMoreTeachers)
	teachers.Get("/:teacherId", h.GetTeacher)
}
