package realtime

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"huntx-client/internal/observability"
	"huntx-client/internal/telemetry"
)

const lifecycleRoutingKey = "realtime.lifecycle"

// ConnInfo identifies one transport connection for lifecycle events.
type ConnInfo struct {
	ConnID      string
	UserID      string
	URL         string
	ConnectedAt time.Time
}

func publishLifecycle(ctx context.Context, event string, info ConnInfo, reason string) {
	observability.IncRealtimeEvent("lifecycle", event)
	duration := int64(0)
	if !info.ConnectedAt.IsZero() {
		duration = time.Since(info.ConnectedAt).Milliseconds()
	}
	_ = observability.PublishEvent(ctx, lifecycleRoutingKey, observability.EventEnvelope{
		EventType: "realtime_events",
		EventName: event,
		Payload: map[string]interface{}{
			"realtime": map[string]interface{}{
				"event":       event,
				"conn_id":     info.ConnID,
				"url":         info.URL,
				"duration_ms": duration,
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id": info.UserID,
			},
		},
	}, observability.BuildHeaders(telemetry.RequestIDFromContext(ctx), traceID(ctx)))
}

func traceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
