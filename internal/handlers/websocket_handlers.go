package handlers

import (
	"net/http"

	"murmur/internal/auth"
	"murmur/internal/config"
	"murmur/internal/realtime"
	"murmur/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	authService *auth.Service
	hub         *realtime.Hub
	sendBuffer  int
	upgrader    websocket.Upgrader
}

func NewWebSocketHandlers(authService *auth.Service, hub *realtime.Hub, cfg *config.Config) *WebSocketHandlers {
	return &WebSocketHandlers{
		authService: authService,
		hub:         hub,
		sendBuffer:  cfg.Realtime.SendBuffer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and registers it under the
// identity the token was issued for. The identity is taken from the signed
// credential, never from a client-supplied parameter.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get JWT token from query parameters
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	identity, err := h.authService.IdentityFromToken(tokenStr)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := realtime.NewClient(h.hub, conn, identity, h.sendBuffer)

	// Register client with hub; the hub broadcasts the presence update
	h.hub.Register <- client

	// Start client pumps
	go client.WritePump()
	go client.ReadPump()
}
