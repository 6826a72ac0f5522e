package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
)

const directChatName = "sender"

type ChatService struct {
	chats  repositories.ChatRepository
	users  repositories.UserRepository
	views  chatViews
	events observability.Publisher
}

func NewChatService(chats repositories.ChatRepository, messages repositories.MessageRepository, users repositories.UserRepository, events observability.Publisher) *ChatService {
	return &ChatService{
		chats:  chats,
		users:  users,
		views:  chatViews{users: users, messages: messages},
		events: events,
	}
}

// PairKey is the order-independent key of a direct chat between a and b.
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + ":" + pair[1]
}

// AccessOrCreateDirect returns the direct chat between requester and other,
// creating it on first contact. Repeated calls for the same pair return the same chat.
func (s *ChatService) AccessOrCreateDirect(ctx context.Context, requesterID, otherID string) (models.ChatView, error) {
	otherID = strings.TrimSpace(otherID)
	if otherID == "" {
		return models.ChatView{}, apperrors.InvalidInput("otherUserId is required")
	}
	if otherID == requesterID {
		return models.ChatView{}, apperrors.InvalidInput("cannot start a chat with yourself")
	}
	exists, err := s.users.Exists(ctx, otherID)
	if err != nil {
		return models.ChatView{}, apperrors.Internal("failed to access chat", err)
	}
	if !exists {
		return models.ChatView{}, apperrors.ErrUserNotFound
	}

	key := PairKey(requesterID, otherID)
	chat, err := s.chats.GetByPairKey(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		chat, err = s.createDirect(ctx, requesterID, otherID, key)
		if err != nil {
			return models.ChatView{}, err
		}
	default:
		return models.ChatView{}, apperrors.Internal("failed to access chat", err)
	}

	return s.view(ctx, chat)
}

func (s *ChatService) createDirect(ctx context.Context, requesterID, otherID, key string) (models.Chat, error) {
	chat := models.Chat{
		ID:       newID(),
		ChatName: directChatName,
		PairKey:  &key,
		Users:    []string{requesterID, otherID},
	}
	err := s.chats.CreateDirect(ctx, &chat)
	if errors.Is(err, repositories.ErrDuplicate) {
		existing, err := s.chats.GetByPairKey(ctx, key)
		if err != nil {
			return models.Chat{}, storeErr(err, apperrors.ErrChatNotFound, "failed to access chat")
		}
		return existing, nil
	}
	if err != nil {
		return models.Chat{}, apperrors.Internal("failed to create chat", err)
	}
	publishEvent(ctx, s.events, "chat.created", requesterID, chat.ID, map[string]any{"users": chat.Users})
	return chat, nil
}

type GroupInput struct {
	Name   string   `json:"name" binding:"required"`
	Users  []string `json:"users" binding:"required"`
	Avatar string   `json:"avatar"`
}

// CreateGroup creates a group chat administered by the creator.
func (s *ChatService) CreateGroup(ctx context.Context, creatorID string, in GroupInput) (models.ChatView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.ChatView{}, apperrors.InvalidInput("group name is required")
	}
	members := make([]string, 0, len(in.Users)+1)
	for _, id := range uniqueTrimmed(in.Users) {
		if id != creatorID {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return models.ChatView{}, apperrors.InvalidInput("a group needs at least one other member")
	}
	found, err := s.users.Summaries(ctx, members)
	if err != nil {
		return models.ChatView{}, apperrors.Internal("failed to create group", err)
	}
	if len(found) != len(members) {
		return models.ChatView{}, apperrors.ErrUserNotFound
	}

	admin := creatorID
	chat := models.Chat{
		ID:           newID(),
		ChatName:     name,
		IsGroupChat:  true,
		GroupAdminID: &admin,
		Avatar:       strings.TrimSpace(in.Avatar),
		Users:        append(members, creatorID),
	}
	if err := s.chats.CreateGroup(ctx, &chat); err != nil {
		return models.ChatView{}, apperrors.Internal("failed to create group", err)
	}
	publishEvent(ctx, s.events, "chat.group_created", creatorID, chat.ID, map[string]any{"users": chat.Users})
	return s.view(ctx, chat)
}

// adminGroup loads a group chat that callerID administers.
func (s *ChatService) adminGroup(ctx context.Context, callerID, chatID string) (models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return models.Chat{}, storeErr(err, apperrors.ErrChatNotFound, "failed to load chat")
	}
	if !chat.IsGroupChat {
		return models.Chat{}, apperrors.InvalidInput("chat is not a group chat")
	}
	if !chat.IsAdmin(callerID) {
		return models.Chat{}, apperrors.Forbidden("only the group admin can change the group")
	}
	return chat, nil
}

// memberGroup loads a group chat the caller belongs to.
func (s *ChatService) memberGroup(ctx context.Context, callerID, chatID string) (models.Chat, error) {
	chat, err := s.memberChat(ctx, callerID, chatID)
	if err != nil {
		return models.Chat{}, err
	}
	if !chat.IsGroupChat {
		return models.Chat{}, apperrors.InvalidInput("chat is not a group chat")
	}
	return chat, nil
}

func (s *ChatService) Rename(ctx context.Context, callerID, chatID, name string) (models.ChatView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ChatView{}, apperrors.InvalidInput("chatName is required")
	}
	if _, err := s.adminGroup(ctx, callerID, chatID); err != nil {
		return models.ChatView{}, err
	}
	if err := s.chats.Rename(ctx, chatID, name); err != nil {
		return models.ChatView{}, storeErr(err, apperrors.ErrChatNotFound, "failed to rename chat")
	}
	return s.reload(ctx, chatID)
}

func (s *ChatService) SetAvatar(ctx context.Context, callerID, chatID, avatar string) (models.ChatView, error) {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return models.ChatView{}, apperrors.InvalidInput("avatar is required")
	}
	if _, err := s.adminGroup(ctx, callerID, chatID); err != nil {
		return models.ChatView{}, err
	}
	if err := s.chats.SetAvatar(ctx, chatID, avatar); err != nil {
		return models.ChatView{}, storeErr(err, apperrors.ErrChatNotFound, "failed to update avatar")
	}
	return s.reload(ctx, chatID)
}

func (s *ChatService) AddMember(ctx context.Context, callerID, chatID, userID string) (models.ChatView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.ChatView{}, apperrors.InvalidInput("userId is required")
	}
	chat, err := s.adminGroup(ctx, callerID, chatID)
	if err != nil {
		return models.ChatView{}, err
	}
	if chat.HasMember(userID) {
		return models.ChatView{}, apperrors.ErrAlreadyMember
	}
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return models.ChatView{}, apperrors.Internal("failed to add member", err)
	}
	if !exists {
		return models.ChatView{}, apperrors.ErrUserNotFound
	}
	if err := s.chats.AddMember(ctx, chatID, userID); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.ChatView{}, apperrors.ErrAlreadyMember
		}
		return models.ChatView{}, apperrors.Internal("failed to add member", err)
	}
	return s.reload(ctx, chatID)
}

func (s *ChatService) RemoveMember(ctx context.Context, callerID, chatID, userID string) (models.ChatView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.ChatView{}, apperrors.InvalidInput("userId is required")
	}
	var chat models.Chat
	var err error
	if userID == callerID {
		chat, err = s.memberGroup(ctx, callerID, chatID)
	} else {
		chat, err = s.adminGroup(ctx, callerID, chatID)
	}
	if err != nil {
		return models.ChatView{}, err
	}
	if chat.IsAdmin(userID) {
		return models.ChatView{}, apperrors.Conflict(apperrors.ErrInvalidOperation.Code, "the group admin cannot be removed")
	}
	if !chat.HasMember(userID) {
		return models.ChatView{}, apperrors.ErrNotAMember
	}
	if err := s.chats.RemoveMember(ctx, chatID, userID); err != nil {
		return models.ChatView{}, storeErr(err, apperrors.ErrNotAMember, "failed to remove member")
	}
	return s.reload(ctx, chatID)
}

// SetCount stores the chat's unread counter. Any member may set it.
func (s *ChatService) SetCount(ctx context.Context, callerID, chatID string, count int) (models.ChatView, error) {
	if count < 0 {
		return models.ChatView{}, apperrors.InvalidInput("count must not be negative")
	}
	if _, err := s.memberChat(ctx, callerID, chatID); err != nil {
		return models.ChatView{}, err
	}
	if err := s.chats.SetCount(ctx, chatID, count); err != nil {
		return models.ChatView{}, storeErr(err, apperrors.ErrChatNotFound, "failed to update chat count")
	}
	return s.reload(ctx, chatID)
}

// List returns the caller's chats, most recently active first.
func (s *ChatService) List(ctx context.Context, userID string) ([]models.ChatView, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load chats", err)
	}
	views, err := s.views.build(ctx, chats)
	if err != nil {
		return nil, apperrors.Internal("failed to load chats", err)
	}
	return views, nil
}

// Get returns a chat the caller belongs to.
func (s *ChatService) Get(ctx context.Context, userID, chatID string) (models.ChatView, error) {
	chat, err := s.memberChat(ctx, userID, chatID)
	if err != nil {
		return models.ChatView{}, err
	}
	return s.view(ctx, chat)
}

// Delete removes a chat and its messages. Groups can only be deleted by the admin;
// either member may delete a direct chat.
func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	chat, err := s.memberChat(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if chat.IsGroupChat && !chat.IsAdmin(userID) {
		return apperrors.Forbidden("only the group admin can delete the group")
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		return storeErr(err, apperrors.ErrChatNotFound, "failed to delete chat")
	}
	publishEvent(ctx, s.events, "chat.deleted", userID, chatID, nil)
	return nil
}

// IsMember reports whether userID belongs to chatID. Missing chats report false.
func (s *ChatService) IsMember(ctx context.Context, chatID, userID string) (bool, error) {
	return s.chats.IsMember(ctx, chatID, userID)
}

func (s *ChatService) memberChat(ctx context.Context, userID, chatID string) (models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return models.Chat{}, storeErr(err, apperrors.ErrChatNotFound, "failed to load chat")
	}
	if !chat.HasMember(userID) {
		return models.Chat{}, apperrors.Forbidden("not a member of this chat")
	}
	return chat, nil
}

func (s *ChatService) reload(ctx context.Context, chatID string) (models.ChatView, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return models.ChatView{}, storeErr(err, apperrors.ErrChatNotFound, "failed to load chat")
	}
	return s.view(ctx, chat)
}

func (s *ChatService) view(ctx context.Context, chat models.Chat) (models.ChatView, error) {
	view, err := s.views.one(ctx, chat)
	if err != nil {
		return models.ChatView{}, apperrors.Internal("failed to load chat", err)
	}
	return view, nil
}
