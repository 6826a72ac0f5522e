package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/observability"
)

const RequestIDKey = "request_id"

// RequestID assigns every request an id, echoes it in X-Request-ID and makes it
// available to handlers and event publishers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := observability.RequestIDFromRequest(c.Request)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
