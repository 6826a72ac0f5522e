package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router gin.IRouter, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "audit emitter not configured", "code": "UNAVAILABLE"})
			return
		}
		recordAudit(c, emitter, "audit test", map[string]string{"route": c.FullPath()})
		respondOK(c, http.StatusOK, gin.H{"status": "ok"})
	})
}
