package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"huntx-client/internal/observability"
	"huntx-client/internal/telemetry"
)

// RequestIDContextKey is the gin context key holding the request id.
const RequestIDContextKey = "request_id"

// RequestID makes sure every request carries an id: reused from the incoming
// header when present, echoed back, and attached to the request context so
// outgoing REST calls forward it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(observability.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(observability.RequestIDHeader, id)
		}
		c.Set(RequestIDContextKey, id)
		c.Header(observability.RequestIDHeader, id)
		c.Request = c.Request.WithContext(telemetry.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
