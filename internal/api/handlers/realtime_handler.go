package handlers

import (
	"time"

	"FoodShare-Backend/internal/middleware"
	"FoodShare-Backend/pkg/notification"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const pingInterval = 25 * time.Second

type (
	RealtimeHandler interface {
		Upgrade(c *fiber.Ctx) error
		DonationFeed() fiber.Handler
	}

	realtimeHandler struct {
		hub *notification.Hub
	}
)

func NewRealtimeHandler(hub *notification.Hub) RealtimeHandler {
	return &realtimeHandler{hub: hub}
}

// Upgrade rejects plain HTTP requests and carries the caller id into the
// websocket connection.
func (h *realtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("allowed", true)
	c.Locals(middleware.LocalUserID, middleware.CurrentActor(c).UserID)
	return c.Next()
}

// DonationFeed streams donation events to the connection until it closes.
func (h *realtimeHandler) DonationFeed() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalUserID).(string)
		client := h.hub.Register(userID)
		defer h.hub.Unregister(client)

		// read loop only notices the peer going away
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-closed:
				return
			case frame, ok := <-client.Send:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					log.Debugw("realtime write failed", "user_id", userID, "error", err)
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	})
}
