package handlers

import (
	"log/slog"
	"math"

	"github.com/gin-gonic/gin"

	"social-service/internal/apperrors"
	"social-service/internal/pagination"
)

func respondOK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError writes the failure body for err. Causes of internal errors are
// logged and never serialized.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err, "internal server error")
	if appErr.Kind == apperrors.KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "route", c.FullPath(), "request_id", requestIDFromContext(c), "error", err)
	}
	c.JSON(appErr.Kind.HTTPStatus(), gin.H{"success": false, "message": appErr.Message, "code": appErr.Code})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return false
	}
	return true
}

// queryLimit reads ?limit; services apply their own default and ceiling.
func queryLimit(c *gin.Context) (int, bool) {
	limit, err := pagination.Limit(c.Query("limit"), 0, math.MaxInt32)
	if err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return 0, false
	}
	return limit, true
}

func pageBody[T any](page pagination.Page[T], key string) gin.H {
	return gin.H{key: page.Items, "next_cursor": page.NextCursor, "has_more": page.HasMore}
}

func currentUser(c *gin.Context) string {
	return c.GetString("userID")
}
