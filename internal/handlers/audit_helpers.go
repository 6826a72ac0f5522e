package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/middleware"
	"social-service/internal/telemetry"
)

func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(middleware.RequestIDKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	if id := c.GetString("userID"); id != "" {
		return &id
	}
	return nil
}

// recordAudit emits an audit record for a state-changing request.
func recordAudit(c *gin.Context, emitter *telemetry.AuditEmitter, text string, fields map[string]string) {
	emitter.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), userIDFromContext(c), fields)
}
