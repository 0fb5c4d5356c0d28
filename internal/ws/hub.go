package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"huntx-client/internal/observability"
)

const (
	TopicSession       = "session"
	TopicConversations = "conversations"
	TopicNotifications = "notifications"
	TopicConnections   = "connections"
	TopicRealtime      = "realtime"

	routingKey = "ws_events.bridge"
	writeWait  = 5 * time.Second
)

// Update is one frame pushed to view subscribers.
type Update struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	conn *websocket.Conn
	info ConnInfo
	mu   sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub fans store updates out to every connected view.
type Hub struct {
	clients map[*websocket.Conn]*client
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// AddClient registers a view connection.
func (h *Hub) AddClient(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = &client{conn: conn, info: info}
}

// RemoveClient unregisters a view connection.
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Len returns the number of connected views.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends update to every view. Views that fail a write are dropped.
func (h *Hub) Broadcast(update Update) {
	payload, err := json.Marshal(update)
	if err != nil {
		log.Printf("bridge encode %s update: %v", update.Type, err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(payload); err != nil {
			log.Printf("websocket write error: %v", err)
			c.conn.Close()
			h.RemoveClient(c.conn)
			publishWSEvent(context.Background(), "ws_error", c.info, err.Error())
		}
	}
}

func (h *Hub) send(conn *websocket.Conn, update Update) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	h.mu.RLock()
	c, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return c.write(payload)
}

func publishWSEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "bridge",
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"ip": info.IP,
		},
	}
	_ = observability.PublishEvent(ctx, routingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
