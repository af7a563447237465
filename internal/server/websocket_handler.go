package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatsync/internal/dispatch"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades HTTP connections and hands them to the hub.
type WebSocketHandler struct {
	hub        *Hub
	dispatcher *dispatch.Dispatcher
	jwtSecret  []byte
}

func NewWebSocketHandler(hub *Hub, dispatcher *dispatch.Dispatcher, jwtSecret []byte) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		dispatcher: dispatcher,
		jwtSecret:  jwtSecret,
	}
}

// Handle upgrades HTTP to WebSocket.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := extractBearer(c)
	if token == "" {
		token = c.Query("token")
	}

	claims, err := ParseAccessToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.Errorf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, h.dispatcher, claims.UserID, uuid.NewString())
	h.hub.register <- client
}
