// console/internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"enquiry-admin-console/internal/api/middleware"
	"enquiry-admin-console/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Longest wait for any frame from the client before the socket is dropped.
const pongWait = 30 * time.Second

type WebSocketHandler struct {
	Hub    *socket.Hub
	Logger *zap.Logger
	// CheckOrigin vets the Origin header; nil accepts any origin.
	CheckOrigin func(r *http.Request) bool
}

// ServeWs upgrades an admitted admin's request and streams console events to
// it until the client goes away.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	user := middleware.CurrentUser(c)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.CheckOrigin,
	}
	if upgrader.CheckOrigin == nil {
		upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := h.Hub.Register(user.ID, conn)
	defer func() {
		h.Hub.Unregister(user.ID, client)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Logger.Info("Unexpected close error", zap.String("user_id", user.ID), zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
