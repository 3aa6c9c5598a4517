package handlers

import (
	"github.com/anjiri1684/learnlingo/catalog"
	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/gofiber/fiber/v2"
)

// BrowseHeader carries the browse id of an anonymous visitor's catalog view.
const BrowseHeader = "X-Browse-ID"

type TeacherListResponse struct {
	Teachers    []models.Teacher `json:"teachers"`
	Total       int              `json:"total"`
	Visible     int              `json:"visible"`
	HasMore     bool             `json:"has_more"`
	Source      catalog.Source   `json:"source"`
	FavoriteIDs []string         `json:"favorite_ids,omitempty"`
	BrowseID    string           `json:"browse_id,omitempty"`
}

func criteriaFromQuery(c *fiber.Ctx) (catalog.Criteria, error) {
	return catalog.ParseCriteria(c.Query("language"), c.Query("level"), c.Query("price"))
}

// teacherView is the catalog browser behind the request: the signed-in user's,
// or the anonymous one named by BrowseHeader.
type teacherView struct {
	browser     *catalog.Browser
	browseID    string
	favoriteIDs func() []string
}

func (h *Handler) viewFor(c *fiber.Ctx) teacherView {
	if s := middleware.CurrentSession(c); s != nil {
		client := h.Registry.Resume(c.UserContext(), *s)
		return teacherView{browser: client.Teachers, favoriteIDs: client.Favorites.IDs}
	}
	b, id := h.Registry.Guest(c.Get(BrowseHeader))
	c.Set(BrowseHeader, id)
	return teacherView{browser: b, browseID: id}
}

func listResponse(b *catalog.Browser, source catalog.Source) TeacherListResponse {
	teachers, more := b.Visible()
	return TeacherListResponse{
		Teachers: teachers,
		Total:    b.Total(),
		Visible:  len(teachers),
		HasMore:  more,
		Source:   source,
	}
}

func (v teacherView) respond(c *fiber.Ctx, source catalog.Source) error {
	resp := listResponse(v.browser, source)
	resp.BrowseID = v.browseID
	if v.favoriteIDs != nil {
		resp.FavoriteIDs = v.favoriteIDs()
	}
	return c.JSON(resp)
}

// ListTeachers applies the query criteria to the caller's catalog view. The page
// starts over at PageSize whenever the criteria change.
func (h *Handler) ListTeachers(c *fiber.Ctx) error {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		return err
	}

	snap := h.Catalog.Load(c.UserContext())
	view := h.viewFor(c)
	view.browser.Sync(snap.Teachers, criteria)
	return view.respond(c, snap.Source)
}

// LoadMoreTeachers grows the caller's page by PageSize under the current criteria.
func (h *Handler) LoadMoreTeachers(c *fiber.Ctx) error {
	snap := h.Catalog.Load(c.UserContext())
	view := h.viewFor(c)
	view.browser.SetCatalog(snap.Teachers)
	view.browser.LoadMore()
	return view.respond(c, snap.Source)
}

func (h *Handler) GetTeacher(c *fiber.Ctx) error {
	teacher, source, err := h.Catalog.Get(c.UserContext(), c.Params("teacherId"))
	if err != nil {
		return err
	}

	resp := fiber.Map{"teacher": teacher, "source": source}
	if n, err := h.Bookings.OpenRequests(c.UserContext(), teacher.ID); err != nil {
		h.Log.Warn("could not count trial requests", err, map[string]interface{}{"teacher_id": teacher.ID})
	} else {
		resp["open_requests"] = n
	}
	return c.JSON(resp)
}
