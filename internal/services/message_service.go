package services

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/pagination"
	"social-service/internal/repositories"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// MessageService persists chat messages and fans them out to live connections.
type MessageService struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	views    chatViews
	notifier Notifier
	events   observability.Publisher
}

func NewMessageService(chats repositories.ChatRepository, messages repositories.MessageRepository, users repositories.UserRepository, events observability.Publisher) *MessageService {
	return &MessageService{
		chats:    chats,
		messages: messages,
		users:    users,
		views:    chatViews{users: users, messages: messages},
		events:   events,
	}
}

// SetNotifier wires the realtime hub after both sides are constructed.
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send stores a message from a chat member, moves the chat's latest pointer and
// delivers the message to every other member's live connections.
func (s *MessageService) Send(ctx context.Context, senderID, chatID, content string) (view models.MessageView, err error) {
	ctx, span := observability.Tracer().Start(ctx, "MessageService.Send")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("chat.id", chatID), attribute.String("sender.id", senderID))

	content = strings.TrimSpace(content)
	chatID = strings.TrimSpace(chatID)
	if content == "" || chatID == "" {
		return models.MessageView{}, apperrors.InvalidInput("content and chatId are required")
	}

	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return models.MessageView{}, storeErr(err, apperrors.ErrChatNotFound, "failed to send message")
	}
	if !chat.HasMember(senderID) {
		return models.MessageView{}, apperrors.Forbidden("not a member of this chat")
	}

	msg := models.Message{
		ID:       newID(),
		ChatID:   chat.ID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return models.MessageView{}, apperrors.Internal("failed to send message", err)
	}

	chat.LatestMessageID = nil
	chatView, err := s.views.one(ctx, chat)
	if err != nil {
		return models.MessageView{}, apperrors.Internal("failed to send message", err)
	}
	chatView.LatestMessage = &msg
	view = messageView(msg, senderSummary(chatView.Users, senderID), &chatView)

	if err := s.chats.SetLatestMessage(ctx, chat.ID, msg.ID, msg.CreatedAt); err != nil {
		slog.WarnContext(ctx, "latest message pointer not updated", "chat_id", chat.ID, "message_id", msg.ID, "error", err)
	}

	recipients := make([]string, 0, len(chat.Users))
	for _, id := range chat.Users {
		if id != senderID {
			recipients = append(recipients, id)
		}
	}
	if s.notifier != nil {
		s.notifier.DeliverMessage(ctx, view, recipients)
	}

	publishEvent(ctx, s.events, "message.created", senderID, msg.ID, map[string]any{"chat_id": chat.ID})
	return view, nil
}

// List returns a chat's messages in send order, after the given cursor.
func (s *MessageService) List(ctx context.Context, userID, chatID, after string, limit int) (pagination.Page[models.MessageView], error) {
	cursor, err := pagination.Decode(after)
	if err != nil {
		return pagination.Page[models.MessageView]{}, apperrors.InvalidInput("after cursor is malformed")
	}
	limit = clampLimit(limit, DefaultMessageLimit, MaxMessageLimit)

	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return pagination.Page[models.MessageView]{}, storeErr(err, apperrors.ErrChatNotFound, "failed to load messages")
	}
	if !chat.HasMember(userID) {
		return pagination.Page[models.MessageView]{}, apperrors.Forbidden("not a member of this chat")
	}

	msgs, err := s.messages.ListAfter(ctx, chat.ID, cursor, limit+1)
	if err != nil {
		return pagination.Page[models.MessageView]{}, apperrors.Internal("failed to load messages", err)
	}

	senderIDs := make([]string, 0, len(msgs))
	for _, m := range msgs {
		senderIDs = append(senderIDs, m.SenderID)
	}
	summaries, err := s.users.Summaries(ctx, uniqueTrimmed(senderIDs))
	if err != nil {
		return pagination.Page[models.MessageView]{}, apperrors.Internal("failed to load messages", err)
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView(m, senderSummary(summaries, m.SenderID), nil))
	}
	return pagination.Build(views, limit, func(v models.MessageView) pagination.Cursor {
		return pagination.Cursor{CreatedAt: v.CreatedAt, ID: v.ID}
	}), nil
}

func messageView(m models.Message, sender models.UserSummary, chat *models.ChatView) models.MessageView {
	return models.MessageView{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    sender,
		Chat:      chat,
		ChatID:    m.ChatID,
		CreatedAt: m.CreatedAt,
	}
}

func senderSummary(users []models.UserSummary, id string) models.UserSummary {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return models.UserSummary{ID: id}
}
