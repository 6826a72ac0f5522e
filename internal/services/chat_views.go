package services

import (
	"context"
	"errors"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

// chatViews resolves chats into their client display form.
type chatViews struct {
	users    repositories.UserRepository
	messages repositories.MessageRepository
}

// build populates member summaries, the admin and the latest message. A latest
// pointer that no longer resolves falls back to querying the newest message.
func (v chatViews) build(ctx context.Context, chats []models.Chat) ([]models.ChatView, error) {
	userIDs := make([]string, 0)
	messageIDs := make([]string, 0)
	for _, chat := range chats {
		userIDs = append(userIDs, chat.Users...)
		if chat.GroupAdminID != nil {
			userIDs = append(userIDs, *chat.GroupAdminID)
		}
		if chat.LatestMessageID != nil {
			messageIDs = append(messageIDs, *chat.LatestMessageID)
		}
	}

	summaries, err := v.users.Summaries(ctx, uniqueTrimmed(userIDs))
	if err != nil {
		return nil, err
	}
	byUser := make(map[string]models.UserSummary, len(summaries))
	for _, s := range summaries {
		byUser[s.ID] = s
	}

	latest, err := v.messages.GetByIDs(ctx, uniqueTrimmed(messageIDs))
	if err != nil {
		return nil, err
	}
	byMessage := make(map[string]models.Message, len(latest))
	for _, m := range latest {
		byMessage[m.ID] = m
	}

	views := make([]models.ChatView, 0, len(chats))
	for _, chat := range chats {
		view := models.ChatView{
			ID:          chat.ID,
			ChatName:    chat.ChatName,
			IsGroupChat: chat.IsGroupChat,
			Avatar:      chat.Avatar,
			Count:       chat.Count,
			Users:       make([]models.UserSummary, 0, len(chat.Users)),
			CreatedAt:   chat.CreatedAt,
			UpdatedAt:   chat.UpdatedAt,
		}
		for _, id := range chat.Users {
			if s, ok := byUser[id]; ok {
				view.Users = append(view.Users, s)
			}
		}
		if chat.GroupAdminID != nil {
			if s, ok := byUser[*chat.GroupAdminID]; ok {
				admin := s
				view.GroupAdmin = &admin
			}
		}
		if chat.LatestMessageID != nil {
			if m, ok := byMessage[*chat.LatestMessageID]; ok && m.ChatID == chat.ID {
				msg := m
				view.LatestMessage = &msg
			} else {
				msg, err := v.messages.Latest(ctx, chat.ID)
				if err != nil && !errors.Is(err, repositories.ErrNotFound) {
					return nil, err
				}
				if err == nil {
					view.LatestMessage = &msg
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (v chatViews) one(ctx context.Context, chat models.Chat) (models.ChatView, error) {
	views, err := v.build(ctx, []models.Chat{chat})
	if err != nil {
		return models.ChatView{}, err
	}
	return views[0], nil
}
