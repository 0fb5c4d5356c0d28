package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huntx-client/internal/middleware"
	"huntx-client/internal/observability"
	"huntx-client/internal/telemetry"
)

type capturePublisher struct {
	routingKey string
	events     []telemetry.AuditEnvelope
}

func (p *capturePublisher) Publish(_ context.Context, routingKey string, event any, _ map[string]string) error {
	p.routingKey = routingKey
	p.events = append(p.events, event.(telemetry.AuditEnvelope))
	return nil
}

func TestDebugAuditCarriesRequestID(t *testing.T) {
	f := setupRouter(t, true)
	pub := &capturePublisher{}
	emitter := telemetry.NewAuditEmitter(pub, "audit.client", "huntx-client-test", "test")

	router := gin.New()
	router.Use(middleware.RequestID())
	RegisterDebugRoutes(router, emitter, f.session, true)

	req := httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil)
	req.Header.Set(observability.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.events, 1)
	env := pub.events[0]
	assert.Equal(t, "audit.client", pub.routingKey)
	assert.Equal(t, "req-42", env.RequestID)
	assert.Equal(t, "u1", env.UserID)
	assert.Equal(t, "audit_test", env.Payload.Action)
	assert.Equal(t, "audit test", env.Payload.Text)
}

func TestDebugRoutesDisabled(t *testing.T) {
	router := gin.New()
	RegisterDebugRoutes(router, nil, nil, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
