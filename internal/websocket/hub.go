package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/famdo/internal/model"
)

// Namespace prefixes every broadcast message type.
const Namespace = "famdo"

// Message represents a real-time notification broadcast to all clients.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		Extra:  extra,
	}
}

// ClientObserver is told when clients come and go.
type ClientObserver interface {
	ClientConnected()
	ClientDisconnected()
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	logger   *slog.Logger
	observer ClientObserver
}

// NewHub creates a new Hub. observer may be nil.
func NewHub(logger *slog.Logger, observer ClientObserver) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		logger:   logger,
		observer: observer,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.observer != nil {
		h.observer.ClientConnected()
	}
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok && h.observer != nil {
		h.observer.ClientDisconnected()
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.trySend(data)
	}
}

// Emit broadcasts a domain event as famdo_<name>.
func (h *Hub) Emit(_ context.Context, name string, payload map[string]any) {
	h.Broadcast(NewMessage(Namespace, name, payload))
}

// Publish pushes the changed document: once as a famdo_data_updated
// broadcast, and once per subscription as an event frame tagged with the
// id of the subscribe command.
func (h *Hub) Publish(doc *model.Document) {
	raw, err := json.Marshal(doc)
	if err != nil {
		h.logger.Error("marshal document", "error", err)
		return
	}
	h.Broadcast(NewMessage(Namespace, "data_updated", map[string]any{"data": json.RawMessage(raw)}))

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		for _, id := range c.subscriptions() {
			frame, err := json.Marshal(NewEvent(id, raw))
			if err != nil {
				h.logger.Error("marshal event", "subscription", id, "error", err)
				continue
			}
			c.trySend(frame)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
