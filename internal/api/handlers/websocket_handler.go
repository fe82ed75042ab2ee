// server/internal/api/handlers/websocket_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/api/middleware"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/socket"
)

const (
	// Maximum time to wait for a message, ping or pong from the client.
	pongWait = 30 * time.Second
	// Server pings go out a little faster than the client's deadline.
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub    *socket.Hub
	Auth   TokenService
	Users  middleware.UserLookup
	Logger *log.Logger
}

// ServeWs upgrades the request and keeps the connection registered until it closes.
// Browsers cannot set headers on the handshake, so the token comes in ?token=.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	claims, err := h.Auth.ParseToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	// Role-targeted broadcasts go by the stored role, not the one in the token.
	user, err := h.Users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		respondError(c, h.Logger, err, "Failed to load account")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	client := socket.NewClient(user.ID, string(user.Role), conn)
	h.Hub.Register(client)

	done := make(chan struct{})
	defer func() {
		close(done)
		h.Hub.Unregister(client)
		conn.Close()
	}()
	go keepAlive(client, done)

	// Each ping or pong pushes the deadline out. A custom ping handler
	// replaces the default pong reply, so send it here.
	extend := func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	_ = extend("")
	conn.SetPongHandler(extend)
	conn.SetPingHandler(func(data string) error {
		_ = extend(data)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Logger.WithError(err).WithField("user", user.ID).Warn("Unexpected websocket close")
			}
			break
		}
	}
}

func keepAlive(client *socket.Client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.Ping(); err != nil {
				return
			}
		}
	}
}
