package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/services"
	"social-service/internal/telemetry"
)

// ChatHandler serves direct and group chat endpoints.
type ChatHandler struct {
	chats *services.ChatService
	audit *telemetry.AuditEmitter
}

func NewChatHandler(chats *services.ChatService, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chats: chats, audit: audit}
}

type chatMemberRequest struct {
	ChatID string `json:"chatId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

// AccessChat returns the direct chat with otherUserId, creating it on first use.
// The older userId field is still read when otherUserId is absent.
func (h *ChatHandler) AccessChat(c *gin.Context) {
	var req struct {
		OtherUserID string `json:"otherUserId" binding:"required_without=UserID"`
		UserID      string `json:"userId"`
	}
	if !bindJSON(c, &req) {
		return
	}
	other := req.OtherUserID
	if other == "" {
		other = req.UserID
	}
	chat, err := h.chats.AccessOrCreateDirect(c.Request.Context(), currentUser(c), other)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"chat": chat})
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chats.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"chats": chats})
}

func (h *ChatHandler) GetChat(c *gin.Context) {
	chat, err := h.chats.Get(c.Request.Context(), currentUser(c), c.Param("chatId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"chat": chat})
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID := c.Param("chatId")
	if err := h.chats.Delete(c.Request.Context(), currentUser(c), chatID); err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "chat deleted", map[string]string{"chat_id": chatID})
	respondOK(c, http.StatusOK, gin.H{"message": "chat deleted"})
}

func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req services.GroupInput
	if !bindJSON(c, &req) {
		return
	}
	chat, err := h.chats.CreateGroup(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "group chat created", map[string]string{"chat_id": chat.ID})
	respondOK(c, http.StatusCreated, gin.H{"chat": chat})
}

func (h *ChatHandler) RenameGroup(c *gin.Context) {
	var req struct {
		ChatID   string `json:"chatId" binding:"required"`
		ChatName string `json:"chatName" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	chat, err := h.chats.Rename(c.Request.Context(), currentUser(c), req.ChatID, req.ChatName)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"chat": chat})
}

func (h *ChatHandler) SetGroupAvatar(c *gin.Context) {
	var req struct {
		ChatID string `json:"chatId" binding:"required"`
		Avatar string `json:"avatar" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	chat, err := h.chats.SetAvatar(c.Request.Context(), currentUser(c), req.ChatID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"chat": chat})
}

// SetCount stores the unread counter of a chat the caller belongs to.
func (h *ChatHandler) SetCount(c *gin.Context) {
	var req struct {
		ChatID string `json:"chatId" binding:"required"`
		Count  *int   `json:"count" binding:"required,min=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	chat, err := h.chats.SetCount(c.Request.Context(), currentUser(c), req.ChatID, *req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"chat": chat})
}

func (h *ChatHandler) AddMember(c *gin.Context) {
	var req chatMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	chat, err := h.chats.AddMember(c.Request.Context(), currentUser(c), req.ChatID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "group member added", map[string]string{"chat_id": req.ChatID, "user_id": req.UserID})
	respondOK(c, http.StatusOK, gin.H{"chat": chat})
}

func (h *ChatHandler) RemoveMember(c *gin.Context) {
	var req chatMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	chat, err := h.chats.RemoveMember(c.Request.Context(), currentUser(c), req.ChatID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	recordAudit(c, h.audit, "group member removed", map[string]string{"chat_id": req.ChatID, "user_id": req.UserID})
	respondOK(c, http.StatusOK, gin.H{"chat": chat})
}
