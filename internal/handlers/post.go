package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/services"
	"social-service/internal/telemetry"
)

type PostHandler struct {
	posts *services.PostService
	audit *telemetry.AuditEmitter
}

func NewPostHandler(posts *services.PostService, audit *telemetry.AuditEmitter) *PostHandler {
	return &PostHandler{posts: posts, audit: audit}
}

func (h *PostHandler) Create(c *gin.Context) {
	var req struct {
		CommunityID string `json:"communityId" binding:"required"`
		Content     string `json:"content" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), currentUser(c), req.CommunityID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"post": post})
}

func (h *PostHandler) ListAll(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.posts.ListAll(c.Request.Context(), c.Query("before"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pageBody(page, "posts"))
}

func (h *PostHandler) ListByCommunity(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.posts.ListByCommunity(c.Request.Context(), c.Param("communityId"), c.Query("before"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pageBody(page, "posts"))
}

func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.posts.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "post deleted", map[string]string{"post_id": id})
	respondOK(c, http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	res, err := h.posts.ToggleLike(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"liked": res.Liked, "likes": res.Likes})
}
