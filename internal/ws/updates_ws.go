package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"huntx-client/internal/observability"
)

// SnapshotFunc returns the current state of every topic, sent to a view right
// after it connects.
type SnapshotFunc func() []Update

// UpdatesHandler serves the /ws/updates push stream.
type UpdatesHandler struct {
	hub      *Hub
	snapshot SnapshotFunc
}

// NewUpdatesHandler constructs an UpdatesHandler. snapshot may be nil.
func NewUpdatesHandler(hub *Hub, snapshot SnapshotFunc) *UpdatesHandler {
	return &UpdatesHandler{hub: hub, snapshot: snapshot}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the view.
func (h *UpdatesHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("huntx-client/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(conn, info)
	observability.IncBridgeWSActive()
	publishWSEvent(ctx, "ws_connect", info, "")

	if h.snapshot != nil {
		for _, update := range h.snapshot() {
			if err := h.hub.send(conn, update); err != nil {
				break
			}
		}
	}

	// the request context ends when Handle returns
	connCtx := context.WithoutCancel(ctx)
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(conn)
			observability.DecBridgeWSActive()
			publishWSEvent(connCtx, "ws_disconnect", info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					publishWSEvent(connCtx, "ws_error", info, closeReason)
				}
				return
			}
		}
	}()
}
