package handlers

import (
	"context"

	"github.com/anjiri1684/learnlingo/catalog"
	"github.com/anjiri1684/learnlingo/favorites"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/anjiri1684/learnlingo/workspace"
	"github.com/gofiber/fiber/v2"
)

type FavoriteResponse struct {
	Favorite bool     `json:"favorite"`
	Degraded bool     `json:"degraded"`
	IDs      []string `json:"ids"`
}

func (h *Handler) client(c *fiber.Ctx) (*workspace.Client, error) {
	s := middleware.CurrentSession(c)
	if s == nil {
		return nil, favorites.ErrNoSession
	}
	return h.Registry.Resume(c.UserContext(), *s), nil
}

// GetFavorites returns the favorite set; refresh=true reloads it from the store first.
func (h *Handler) GetFavorites(c *fiber.Ctx) error {
	client, err := h.client(c)
	if err != nil {
		return err
	}
	if c.QueryBool("refresh") {
		if err := client.Favorites.Reload(c.UserContext()); err != nil {
			return err
		}
	}
	snap := client.Favorites.Snapshot()
	return c.JSON(fiber.Map{
		"ids":     snap.IDs,
		"state":   snap.State.String(),
		"source":  snap.Source.String(),
		"pending": snap.Pending,
	})
}

func favoritesResponse(client *workspace.Client, source catalog.Source) TeacherListResponse {
	resp := listResponse(client.FavoriteTeachers, source)
	resp.FavoriteIDs = client.Favorites.IDs()
	return resp
}

// FavoriteTeachers is the favorites page: favorite teachers, filtered and paginated.
func (h *Handler) FavoriteTeachers(c *fiber.Ctx) error {
	client, err := h.client(c)
	if err != nil {
		return err
	}
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		return err
	}

	snap := h.Catalog.Load(c.UserContext())
	client.FavoriteTeachers.Sync(catalog.FavoritesOf(snap.Teachers, client.Favorites.IsFavorite), criteria)
	return c.JSON(favoritesResponse(client, snap.Source))
}

func (h *Handler) LoadMoreFavoriteTeachers(c *fiber.Ctx) error {
	client, err := h.client(c)
	if err != nil {
		return err
	}

	snap := h.Catalog.Load(c.UserContext())
	client.FavoriteTeachers.SetCatalog(catalog.FavoritesOf(snap.Teachers, client.Favorites.IsFavorite))
	client.FavoriteTeachers.LoadMore()
	return c.JSON(favoritesResponse(client, snap.Source))
}

type mutation func(*favorites.Synchronizer, context.Context, interface{}) (favorites.Result, error)

func (h *Handler) mutateFavorite(c *fiber.Ctx, m mutation) error {
	client, err := h.client(c)
	if err != nil {
		return err
	}
	res, err := m(client.Favorites, c.UserContext(), c.Params("teacherId"))
	if err != nil {
		return err
	}
	return c.JSON(FavoriteResponse{Favorite: res.Favorite, Degraded: res.Degraded, IDs: client.Favorites.IDs()})
}

func (h *Handler) ToggleFavorite(c *fiber.Ctx) error {
	return h.mutateFavorite(c, (*favorites.Synchronizer).Toggle)
}

func (h *Handler) AddFavorite(c *fiber.Ctx) error {
	return h.mutateFavorite(c, (*favorites.Synchronizer).Add)
}

func (h *Handler) RemoveFavorite(c *fiber.Ctx) error {
	return h.mutateFavorite(c, (*favorites.Synchronizer).Remove)
}
