package handlers

import (
	"context"

	"github.com/anjiri1684/learnlingo/middleware"
	"github.com/anjiri1684/learnlingo/session"
	hub "github.com/anjiri1684/learnlingo/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// UpgradeRealtime authenticates the `token` query parameter before the websocket handshake.
func (h *Handler) UpgradeRealtime(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	s, err := h.Tokens.ParseToken(c.Query("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired JWT")
	}
	middleware.SetSession(c, &s)
	return c.Next()
}

// Realtime pushes favorites and session events for the connected user.
func (h *Handler) Realtime() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		s, ok := conn.Locals(middleware.SessionKey).(*session.Session)
		if !ok || s == nil {
			_ = conn.Close()
			return
		}

		client := h.Registry.Resume(context.Background(), *s)

		present := true
		if err := conn.WriteJSON(hub.Event{Type: hub.EventSession, Present: &present}); err != nil {
			return
		}
		if err := conn.WriteJSON(hub.Event{Type: hub.EventFavorites, IDs: client.Favorites.IDs()}); err != nil {
			return
		}

		// the hub is the only writer once registered
		h.Hub.Register(s.UserID, conn)
		defer h.Hub.Unregister(s.UserID, conn)

		// the client never sends anything useful; reading detects the close
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
