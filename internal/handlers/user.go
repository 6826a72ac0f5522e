package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/pagination"
	"social-service/internal/services"
	"social-service/internal/telemetry"
)

// UserHandler serves account, profile and follow endpoints.
type UserHandler struct {
	users *services.UserService
	audit *telemetry.AuditEmitter
}

func NewUserHandler(users *services.UserService, audit *telemetry.AuditEmitter) *UserHandler {
	return &UserHandler{users: users, audit: audit}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "user registered", map[string]string{"user_id": res.User.ID})
	respondOK(c, http.StatusCreated, gin.H{"user": res.User, "token": res.Token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": res.User, "token": res.Token})
}

// List is the admin account listing.
func (h *UserHandler) List(c *gin.Context) {
	page, err := pagination.ParseOffset(c.Query("page"), c.Query("limit"), services.DefaultUserPageSize, services.MaxUserPageSize)
	if err != nil {
		respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	list, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"users": list.Users, "total": list.Total, "page": list.Page, "limit": list.Limit})
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name     *string `json:"name"`
		Username *string `json:"username"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Avatar   *string `json:"avatar"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateAccount(c.Request.Context(), currentUser(c), models.UserUpdate{
		Name: req.Name, Username: req.Username, Email: req.Email, Avatar: req.Avatar,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) SetInterests(c *gin.Context) {
	var req struct {
		Interests []string `json:"interests" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.SetInterests(c.Request.Context(), currentUser(c), req.Interests)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), currentUser(c), req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "password changed", nil)
	respondOK(c, http.StatusOK, gin.H{"message": "password updated"})
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	profile := user.Summary()
	profile.Email = ""
	respondOK(c, http.StatusOK, gin.H{"user": profile, "interests": user.Interests})
}

func (h *UserHandler) ToggleFollow(c *gin.Context) {
	following, err := h.users.ToggleFollow(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"following": following})
}

func (h *UserHandler) Followers(c *gin.Context) {
	users, err := h.users.Followers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) Following(c *gin.Context) {
	users, err := h.users.Following(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"users": users})
}
