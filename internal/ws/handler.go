package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"social-service/internal/middleware"
	"social-service/internal/observability"
)

// TokenVerifier resolves an access token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Handler upgrades authenticated requests to realtime connections.
type Handler struct {
	hub      *Hub
	verifier TokenVerifier
}

func NewHandler(hub *Hub, verifier TokenVerifier) *Handler {
	return &Handler{hub: hub, verifier: verifier}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handle authenticates the handshake, upgrades the connection and serves it
// until the peer disconnects.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := observability.Tracer().Start(c.Request.Context(), "ws.handshake")
	c.Request = c.Request.WithContext(ctx)

	token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = strings.TrimSpace(c.Query("token"))
	}
	if token == "" {
		span.End()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing token", "code": "UNAUTHORIZED"})
		return
	}
	userID, err := h.verifier.Verify(token)
	if err != nil {
		span.End()
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token", "code": "UNAUTHORIZED"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.End()
		return
	}

	requestID := observability.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = observability.RequestIDFromRequest(c.Request)
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := newClient(conn, info, h.hub.newLimiter())
	h.hub.Register(ctx, client)
	span.End()

	go client.writePump()
	reason := client.readPump(ctx, h.hub)
	h.hub.Unregister(ctx, client, reason)
}
