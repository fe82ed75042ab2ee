// server/internal/socket/hub.go
package socket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// Client is one registered websocket connection.
type Client struct {
	UserID string
	Role   string
	conn   *websocket.Conn
	// gorilla connections allow one concurrent writer.
	writeMu sync.Mutex
}

func NewClient(userID, role string, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Role: role, conn: conn}
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Ping sends a ping control frame.
func (c *Client) Ping() error {
	return c.write(websocket.PingMessage, nil)
}

// Hub tracks connected clients by user id.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client, replacing any earlier connection of the same user.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[c.UserID]; ok && old != c {
		_ = old.conn.Close()
	}
	h.clients[c.UserID] = c
	h.logger.WithFields(log.Fields{"user": c.UserID, "role": c.Role}).Info("WebSocket client registered")
}

// Unregister removes c if it is still the user's current connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[c.UserID]; ok && cur == c {
		delete(h.clients, c.UserID)
		h.logger.WithField("user", c.UserID).Info("WebSocket client unregistered")
	}
}

// Connected reports whether userID has a live connection.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Send delivers message to one user. An offline user is not an error.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		h.logger.WithField("user", userID).Debug("WebSocket client not found, message dropped")
		return nil
	}
	return c.write(websocket.TextMessage, message)
}

// SendToRole delivers message to every connected user with role and returns
// how many clients received it.
func (h *Hub) SendToRole(role string, message []byte) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		if c.Role == role {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(websocket.TextMessage, message); err != nil {
			h.logger.WithError(err).WithField("user", c.UserID).Warn("WebSocket write failed")
			continue
		}
		sent++
	}
	return sent
}
