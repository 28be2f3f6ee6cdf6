package websocket

import (
	"encoding/json"
	"sync"

	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/pkg/logger"
)

// Hub owns the live websocket clients, keyed by connection id. It implements
// chat.Emitter: the dispatcher computes target sets from the session registry
// and the hub resolves them to sockets. A target that already disconnected is
// skipped silently.
type Hub struct {
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ConnectionId] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"connection_id": client.ConnectionId})

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.ConnectionId]; ok && current == client {
				delete(h.clients, client.ConnectionId)
				close(client.Send)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"connection_id": client.ConnectionId})
			}
			h.mu.Unlock()
		}
	}
}

// Unicast sends one event to one connection.
func (h *Hub) Unicast(connectionId string, event chat.OutboundEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal outbound event", map[string]interface{}{"event": event.Event, "error": err})
		return
	}

	// Send while still read-locked: Run closes Send under the write lock, so
	// a client found in the map cannot have its channel closed mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.clients[connectionId]; ok {
		h.send(client, data)
	}
}

// Multicast sends one event to each listed connection.
func (h *Hub) Multicast(connectionIds []string, event chat.OutboundEvent) {
	if len(connectionIds) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal outbound event", map[string]interface{}{"event": event.Event, "error": err})
		return
	}

	// Same locking discipline as Unicast; send never blocks, so holding the
	// read lock across the fanout is safe.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range connectionIds {
		if client, ok := h.clients[id]; ok {
			h.send(client, data)
		}
	}
}

// send enqueues data for the client's write pump; a full buffer means the
// client stopped draining, so it gets dropped.
func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"connection_id": client.ConnectionId})
		client.Conn.Close()
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
