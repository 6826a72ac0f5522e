package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoleLookup resolves the stored role of a user.
type RoleLookup interface {
	Role(ctx context.Context, userID string) (string, error)
}

// RequireRole lets the request through only when the caller set by
// AuthMiddleware holds role. It must run after AuthMiddleware.
func RequireRole(lookup RoleLookup, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing authorization", "code": "UNAUTHORIZED"})
			return
		}
		got, err := lookup.Role(c.Request.Context(), userID)
		if err != nil {
			c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to resolve role", "code": "INTERNAL"})
			return
		}
		if got != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": role + " role required", "code": "FORBIDDEN"})
			return
		}
		c.Next()
	}
}
