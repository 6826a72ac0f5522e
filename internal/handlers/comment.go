package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-service/internal/services"
	"social-service/internal/telemetry"
)

// CommentHandler serves the one-level comment threads under posts.
type CommentHandler struct {
	comments *services.CommentService
	audit    *telemetry.AuditEmitter
}

func NewCommentHandler(comments *services.CommentService, audit *telemetry.AuditEmitter) *CommentHandler {
	return &CommentHandler{comments: comments, audit: audit}
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req services.CreateCommentInput
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"comment": comment})
}

func (h *CommentHandler) ListForPost(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.comments.ListForPost(c.Request.Context(), c.Param("postId"), c.Query("before"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pageBody(page, "comments"))
}

func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.comments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"comment": comment})
}

func (h *CommentHandler) ListReplies(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.comments.ListReplies(c.Request.Context(), c.Param("id"), c.Query("after"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pageBody(page, "replies"))
}

func (h *CommentHandler) Update(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), currentUser(c), c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"comment": comment})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.comments.Delete(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "comment deleted", map[string]string{"comment_id": id, "removed": strconv.FormatInt(removed, 10)})
	respondOK(c, http.StatusOK, gin.H{"removed": removed})
}

func (h *CommentHandler) ToggleLike(c *gin.Context) {
	res, err := h.comments.ToggleLike(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"liked": res.Liked, "likes": res.Likes})
}
