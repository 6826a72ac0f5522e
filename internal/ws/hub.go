package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/observability"
)

const (
	wsKind       = "realtime"
	wsRoutingKey = "ws_events.realtime"
)

// ChatMembership answers whether a user belongs to a chat.
type ChatMembership interface {
	IsMember(ctx context.Context, chatID, userID string) (bool, error)
}

// MessageSender persists a message and triggers its fan-out.
type MessageSender interface {
	Send(ctx context.Context, senderID, chatID, content string) (models.MessageView, error)
}

// Hub binds connections to identities, routes signals between them and
// delivers persisted messages to recipients' identity rooms.
type Hub struct {
	registry    *Registry
	chats       ChatMembership
	sender      MessageSender
	signalRPS   rate.Limit
	signalBurst int
}

func NewHub(chats ChatMembership, signalRPS float64, signalBurst int) *Hub {
	if signalRPS <= 0 {
		signalRPS = 20
	}
	if signalBurst <= 0 {
		signalBurst = 40
	}
	return &Hub{
		registry:    NewRegistry(),
		chats:       chats,
		signalRPS:   rate.Limit(signalRPS),
		signalBurst: signalBurst,
	}
}

// SetMessageSender wires the message service after both sides exist.
func (h *Hub) SetMessageSender(sender MessageSender) {
	h.sender = sender
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) newLimiter() *rate.Limiter {
	return rate.NewLimiter(h.signalRPS, h.signalBurst)
}

// Dispatch routes one inbound frame.
func (h *Hub) Dispatch(ctx context.Context, c *Client, frame Frame) {
	observability.IncWSEvent(wsKind, frame.Event)

	if frame.Event == EventSetup {
		h.handleSetup(c, frame.Data)
		return
	}
	if !c.bound.Load() {
		h.sendError(c, "UNAUTHORIZED", "setup required")
		return
	}

	switch frame.Event {
	case EventJoinRoom:
		h.handleJoinRoom(ctx, c, frame.Data)
	case EventLeaveRoom:
		var data roomData
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.RoomID == "" {
			h.sendError(c, "INVALID_INPUT", "roomId is required")
			return
		}
		h.registry.Leave(c, chatRoom(data.RoomID))
	case EventTyping, EventStopTyping:
		h.relayTyping(c, frame.Event, frame.Data)
	case EventNewMessage:
		h.handleNewMessage(ctx, c, frame.Data)
	default:
		h.sendError(c, "INVALID_INPUT", "unknown event "+frame.Event)
	}
}

func (h *Hub) handleSetup(c *Client, raw json.RawMessage) {
	var data setupData
	if err := json.Unmarshal(raw, &data); err != nil || data.IdentityID == "" {
		h.sendError(c, "INVALID_INPUT", "identityId is required")
		return
	}
	if data.IdentityID != c.info.UserID {
		h.sendError(c, "UNAUTHORIZED", "identity does not match token")
		return
	}
	h.registry.Join(c, userRoom(data.IdentityID))
	c.bound.Store(true)
	h.emit(c, EventConnected, setupData{IdentityID: data.IdentityID})
}

func (h *Hub) handleJoinRoom(ctx context.Context, c *Client, raw json.RawMessage) {
	var data roomData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		h.sendError(c, "INVALID_INPUT", "roomId is required")
		return
	}
	member, err := h.chats.IsMember(ctx, data.RoomID, c.info.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "room membership check failed", "room_id", data.RoomID, "user_id", c.info.UserID, "error", err)
		h.sendError(c, "INTERNAL", "failed to join room")
		return
	}
	if !member {
		h.sendError(c, "FORBIDDEN", "not a member of this chat")
		return
	}
	h.registry.Join(c, chatRoom(data.RoomID))
}

// relayTyping re-emits a typing signal to everyone else in the room.
func (h *Hub) relayTyping(c *Client, event string, raw json.RawMessage) {
	var data roomData
	if err := json.Unmarshal(raw, &data); err != nil || data.RoomID == "" {
		h.sendError(c, "INVALID_INPUT", "roomId is required")
		return
	}
	room := chatRoom(data.RoomID)
	if !h.registry.InRoom(c, room) {
		h.sendError(c, "FORBIDDEN", "join the room first")
		return
	}
	if c.limiter != nil && !c.limiter.Allow() {
		observability.IncFanout(event, "throttled")
		return
	}

	frame, err := encodeFrame(event, typingData{RoomID: data.RoomID, UserID: c.info.UserID})
	if err != nil {
		return
	}
	for _, peer := range h.registry.MembersOf(room) {
		if peer == c {
			continue
		}
		h.deliver(peer, event, frame)
	}
}

func (h *Hub) handleNewMessage(ctx context.Context, c *Client, raw json.RawMessage) {
	var data newMessageData
	if err := json.Unmarshal(raw, &data); err != nil {
		h.sendError(c, "INVALID_INPUT", "malformed message")
		return
	}
	if h.sender == nil {
		h.sendError(c, "INTERNAL", "messaging unavailable")
		return
	}
	if c.limiter != nil && !c.limiter.Allow() {
		h.sendError(c, "RATE_LIMITED", "slow down")
		return
	}

	view, err := h.sender.Send(ctx, c.info.UserID, strings.TrimSpace(data.ChatID), data.Content)
	if err != nil {
		appErr := apperrors.From(err, "failed to send message")
		if appErr.Kind == apperrors.KindInternal {
			slog.ErrorContext(ctx, "realtime send failed", "chat_id", data.ChatID, "user_id", c.info.UserID, "error", err)
		}
		h.sendError(c, appErr.Code, appErr.Message)
		return
	}
	h.emit(c, EventMessageSent, view)
}

// DeliverMessage pushes a persisted message to every connection bound to a
// recipient. Each connection gets at most one copy and the sender's own
// connections are skipped.
func (h *Hub) DeliverMessage(ctx context.Context, view models.MessageView, recipients []string) {
	frame, err := encodeFrame(EventMessageReceived, view)
	if err != nil {
		slog.ErrorContext(ctx, "encode message frame", "message_id", view.ID, "error", err)
		return
	}

	seen := make(map[*Client]struct{})
	for _, userID := range recipients {
		if userID == view.Sender.ID {
			continue
		}
		for _, c := range h.registry.MembersOf(userRoom(userID)) {
			if c.info.UserID == view.Sender.ID {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			h.deliver(c, EventMessageReceived, frame)
		}
	}
}

func (h *Hub) deliver(c *Client, event string, frame []byte) {
	if c.enqueue(frame) {
		observability.IncFanout(event, "sent")
		return
	}
	observability.IncFanout(event, "dropped")
	slog.Warn("realtime frame dropped", "event", event, "conn_id", c.info.ConnID, "user_id", c.info.UserID)
}

func (h *Hub) emit(c *Client, event string, data any) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		slog.Error("encode frame", "event", event, "error", err)
		return
	}
	h.deliver(c, event, frame)
}

func (h *Hub) sendError(c *Client, code, message string) {
	h.emit(c, EventError, errorData{Code: code, Message: message})
}

// Register records a freshly upgraded connection.
func (h *Hub) Register(ctx context.Context, c *Client) {
	observability.IncWSActive(wsKind)
	h.publishWSEvent(ctx, c, "ws_connect", "")
}

// Unregister purges every room membership of c and stops its writer.
func (h *Hub) Unregister(ctx context.Context, c *Client, reason string) {
	rooms := h.registry.LeaveAll(c)
	c.close()
	observability.DecWSActive(wsKind)
	slog.DebugContext(ctx, "websocket closed", "conn_id", c.info.ConnID, "user_id", c.info.UserID, "rooms", len(rooms))
	h.publishWSEvent(ctx, c, "ws_disconnect", reason)
}

func (h *Hub) connError(ctx context.Context, c *Client, err error) {
	h.publishWSEvent(ctx, c, "ws_error", err.Error())
}

func (h *Hub) publishWSEvent(ctx context.Context, c *Client, event, reason string) {
	info := c.info
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        wsKind,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
	_ = observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
	observability.IncWSEvent(wsKind, event)
}
