package routes

import (
	"github.com/anjiri1684/learnlingo/handlers"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/gofiber/fiber/v2"
)

func FavoriteRoutes(app *fiber.App, h *handlers.Handler, auth middleware.TokenResolver) {
	favorites := app.Group(apiPrefix+"/favorites", middleware.Protected(auth))
	favorites.Get("", h.GetFavorites)
	favorites.Get("/teachers", h.FavoriteTeachers)
	favorites.Post("/teachers/more", h.LoadMoreFavoriteTeachers)
	favorites.Post("/:teacherId/toggle", h.ToggleFavorite)
	favorites.Put("/:teacherId", h.AddFavorite)
	favorites.Delete("/:teacherId", h.RemoveFavorite)
}
