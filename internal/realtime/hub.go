package realtime

import (
	"encoding/json"

	"murmur/internal/models"
	"murmur/pkg/logger"
)

// Hub owns the connection lifecycle: it is the only component that mutates
// the presence registry. Every connect and disconnect re-broadcasts the
// online-user list to all open connections.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	registry *Registry
	clients  map[*Client]struct{}
	shutdown chan struct{}
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		registry:   registry,
		clients:    make(map[*Client]struct{}),
		shutdown:   make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.shutdown:
			for client := range h.clients {
				client.closeSend()
			}
			return

		case client := <-h.Register:
			h.clients[client] = struct{}{}
			h.registry.Register(client.identity, client)
			h.broadcastOnlineUsers()
			logger.Info("User %s connected", client.identity)

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				h.registry.Deregister(client.identity, client)
				h.broadcastOnlineUsers()
				logger.Info("User %s disconnected", client.identity)
			}
		}
	}
}

func (h *Hub) Shutdown() {
	select {
	case h.shutdown <- struct{}{}:
	default:
	}
}

// broadcastOnlineUsers pushes the current presence snapshot to every open
// connection, including the one that just joined.
func (h *Hub) broadcastOnlineUsers() {
	event := models.Event{
		Name: models.EventOnlineUsers,
		Data: h.registry.OnlineIdentities(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Error marshaling presence update: %v", err)
		return
	}

	for client := range h.clients {
		if !client.enqueue(data) {
			// Slow or dead consumer, drop it
			delete(h.clients, client)
			client.closeSend()
			h.registry.Deregister(client.identity, client)
		}
	}
}
