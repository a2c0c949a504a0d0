package server

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/core"
)

// client is one bound websocket connection. A mutex serializes writes:
// the turn loop and the schedule notifier may push frames concurrently.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(ev core.Event) error {
	payload, err := ev.Marshal()
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Hub maps connected users to their websocket clients. It implements
// core.Sender for out-of-session pushes such as scheduled call reminders.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[string]*client), logger: logger}
}

// bind attaches a connection to the user, displacing any previous one.
// The displaced connection is not closed here; its own handler notices
// the registry replacement and tears down.
func (h *Hub) bind(userID string, conn *websocket.Conn) *client {
	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[userID] = c
	h.mu.Unlock()
	return c
}

// unbind detaches the client only if it is still the user's current one.
func (h *Hub) unbind(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == c {
		delete(h.clients, userID)
	}
}

// Send pushes one event to the user's connection. Users without an open
// connection are skipped silently.
func (h *Hub) Send(userID string, ev core.Event) error {
	h.mu.RLock()
	c := h.clients[userID]
	h.mu.RUnlock()
	if c == nil {
		return nil
	}
	return c.send(ev)
}

// Connected reports whether the user has an open connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[userID] != nil
}
