// console/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Event is the JSON frame pushed to a console.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one open websocket of a user. Writes are serialised.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub tracks the open websockets of every admin. One admin may have several
// consoles open at once.
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a connection for userID.
func (h *Hub) Register(userID string, conn *websocket.Conn) *Client {
	c := &Client{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.logger.Info("WebSocket client registered", zap.String("user_id", userID), zap.Int("connections", len(h.clients[userID])))
	return c
}

// Unregister removes one connection of userID.
func (h *Hub) Unregister(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, ok := conns[c]; ok {
		delete(conns, c)
		h.logger.Info("WebSocket client unregistered", zap.String("user_id", userID))
	}
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
}

// Connections is the number of open websockets of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Send writes message to every connection of userID. A user with no open
// connection is not an error. The first write error is returned.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		h.logger.Debug("WebSocket client not found, could not send message", zap.String("user_id", userID))
		return nil
	}

	var firstErr error
	for _, c := range targets {
		if err := c.write(websocket.TextMessage, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Publish sends an event to every console of userID. Failures are logged.
func (h *Hub) Publish(userID, event string, payload any) {
	message, err := json.Marshal(Event{Type: event, Data: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}
	if err := h.Send(userID, message); err != nil {
		h.logger.Warn("Failed to push event", zap.String("user_id", userID), zap.String("event", event), zap.Error(err))
	}
}
