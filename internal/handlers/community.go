package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/apperrors"
	"social-service/internal/pagination"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

// CommunityHandler serves community, moderation, category and discovery endpoints.
type CommunityHandler struct {
	communities *services.CommunityService
	audit       *telemetry.AuditEmitter
}

func NewCommunityHandler(communities *services.CommunityService, audit *telemetry.AuditEmitter) *CommunityHandler {
	return &CommunityHandler{communities: communities, audit: audit}
}

type moderatorRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req services.CreateCommunityInput
	if !bindJSON(c, &req) {
		return
	}
	community, err := h.communities.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "community created", map[string]string{"community_id": community.ID})
	respondOK(c, http.StatusCreated, gin.H{"community": community})
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, err := pagination.ParseOffset(c.Query("page"), c.Query("limit"), services.DefaultCommunityPageSize, services.MaxCommunityPageSize)
	if err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	list, err := h.communities.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"communities": list.Communities,
		"total":       list.Total,
		"page":        list.Page,
		"limit":       list.Limit,
	})
}

func (h *CommunityHandler) ListMine(c *gin.Context) {
	communities, err := h.communities.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"communities": communities})
}

func (h *CommunityHandler) Trending(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	communities, err := h.communities.Trending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"communities": communities})
}

func (h *CommunityHandler) Recommended(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	communities, err := h.communities.Recommended(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"communities": communities})
}

func (h *CommunityHandler) Search(c *gin.Context) {
	communities, err := h.communities.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"communities": communities})
}

func (h *CommunityHandler) ByCategories(c *gin.Context) {
	var req struct {
		Categories []string `json:"categories" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	communities, err := h.communities.ByCategories(c.Request.Context(), req.Categories)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"communities": communities})
}

func (h *CommunityHandler) GetByName(c *gin.Context) {
	community, err := h.communities.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Get(c *gin.Context) {
	community, err := h.communities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Update(c *gin.Context) {
	var req services.UpdateCommunityInput
	if !bindJSON(c, &req) {
		return
	}
	community, err := h.communities.Update(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "community updated", map[string]string{"community_id": community.ID})
	respondOK(c, http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.communities.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "community deleted", map[string]string{"community_id": id})
	respondOK(c, http.StatusOK, gin.H{"message": "community deleted"})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	community, err := h.communities.Join(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	if err := h.communities.Leave(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "left community"})
}

func (h *CommunityHandler) AddModerator(c *gin.Context) {
	var req moderatorRequest
	if !bindJSON(c, &req) {
		return
	}
	community, err := h.communities.AddModerator(c.Request.Context(), currentUser(c), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "moderator added", map[string]string{"community_id": community.ID, "user_id": req.UserID})
	respondOK(c, http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) RemoveModerator(c *gin.Context) {
	var req moderatorRequest
	if !bindJSON(c, &req) {
		return
	}
	community, err := h.communities.RemoveModerator(c.Request.Context(), currentUser(c), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "moderator removed", map[string]string{"community_id": community.ID, "user_id": req.UserID})
	respondOK(c, http.StatusOK, gin.H{"community": community})
}

func (h *CommunityHandler) ListCategories(c *gin.Context) {
	categories, err := h.communities.ListCategories(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"categories": categories})
}

func (h *CommunityHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.communities.CreateCategory(c.Request.Context(), currentUser(c), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"category": category})
}

func (h *CommunityHandler) DeleteCategory(c *gin.Context) {
	if err := h.communities.DeleteCategory(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("categoryId")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "category deleted"})
}
