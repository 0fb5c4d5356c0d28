package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huntx-client/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRoutes, emitter *telemetry.AuditEmitter, session SessionService, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		sess, _ := session.Current()
		emitter.Emit(c.Request.Context(), "INFO", "audit_test", "audit test", sess.UserID)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
