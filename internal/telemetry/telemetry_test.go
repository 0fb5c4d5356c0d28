package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	routingKey string
	events     []any
}

func (c *capturePublisher) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	c.routingKey = routingKey
	c.events = append(c.events, event)
	return nil
}

func TestAuditEmitterEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	emitter := NewAuditEmitter(pub, "audit.session", "huntx-client", "test")

	ctx := WithRequestID(context.Background(), "req-1")
	emitter.Emit(ctx, "INFO", "sign_in", "signed in", "u1")

	require.Len(t, pub.events, 1)
	env, ok := pub.events[0].(AuditEnvelope)
	require.True(t, ok)
	assert.Equal(t, "audit.session", pub.routingKey)
	assert.Equal(t, "audit_log", env.EventType)
	assert.Equal(t, "req-1", env.RequestID)
	assert.Equal(t, "u1", env.UserID)
	assert.Equal(t, "sign_in", env.Payload.Action)
}

func TestNilAuditEmitterIsNoop(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), "INFO", "sign_out", "", "")
}

func TestWithRequestIDGenerates(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	assert.NotEmpty(t, RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestInitTracingWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "huntx-client", "test", "")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
