package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-service/internal/services"
)

// MessageHandler is the REST path into the message fan-out.
type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req struct {
		ChatID  string `json:"chatId" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), currentUser(c), req.ChatID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"message": msg})
}

// List returns a chat's messages oldest first, paged with ?after and ?limit.
func (h *MessageHandler) List(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	page, err := h.messages.List(c.Request.Context(), currentUser(c), c.Param("chatId"), c.Query("after"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, pageBody(page, "messages"))
}
