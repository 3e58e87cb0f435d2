package notification

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const clientBuffer = 32

// RealtimeEvent is the frame written to websocket clients.
type RealtimeEvent struct {
	Event string    `json:"event"`
	Data  any       `json:"data"`
	At    time.Time `json:"at"`
}

// Client is one connected listener. Frames are read from Send by the
// connection's write loop.
type Client struct {
	UserID string
	Send   chan []byte
}

// Hub keeps the set of connected realtime clients and broadcasts donation
// events to all of them. Slow clients lose frames rather than block others.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (h *Hub) Register(userID string) *Client {
	c := &Client{UserID: userID, Send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(event string, data any) {
	frame, err := json.Marshal(RealtimeEvent{Event: event, Data: data, At: h.now()})
	if err != nil {
		log.Errorw("failed to encode realtime event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Send <- frame:
		default:
			log.Warnw("realtime client too slow, dropping frame", "user_id", c.UserID, "event", event)
		}
	}
}
