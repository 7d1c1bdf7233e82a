package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is a live-sync notification pushed to connected UI clients when
// a record changes or a backup finishes.
type Message struct {
	Type       string         `json:"type"`
	Collection string         `json:"collection,omitempty"`
	Action     string         `json:"action,omitempty"`
	ID         string         `json:"id,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// RecordMessage builds the standard notification for a record mutation.
func RecordMessage(collection, action, id string) Message {
	return Message{
		Type:       "record_" + action,
		Collection: collection,
		Action:     action,
		ID:         id,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts
// messages to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients. Slow clients whose
// buffers are full are skipped rather than blocking the caller.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
