package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"social-service/internal/models"
	"social-service/internal/pagination"
)

type CommentRepositoryMock struct {
	mock.Mock
}

func (m *CommentRepositoryMock) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *CommentRepositoryMock) GetByID(ctx context.Context, id string) (models.Comment, error) {
	args := m.Called(ctx, id)
	var c models.Comment
	if val := args.Get(0); val != nil {
		c = val.(models.Comment)
	}
	return c, args.Error(1)
}

func (m *CommentRepositoryMock) ListRoots(ctx context.Context, postID string, before *pagination.Cursor, limit int) ([]models.Comment, error) {
	args := m.Called(ctx, postID, before, limit)
	var list []models.Comment
	if val := args.Get(0); val != nil {
		list = val.([]models.Comment)
	}
	return list, args.Error(1)
}

func (m *CommentRepositoryMock) ListReplies(ctx context.Context, parentID string, after *pagination.Cursor, limit int) ([]models.Comment, error) {
	args := m.Called(ctx, parentID, after, limit)
	var list []models.Comment
	if val := args.Get(0); val != nil {
		list = val.([]models.Comment)
	}
	return list, args.Error(1)
}

func (m *CommentRepositoryMock) UpdateText(ctx context.Context, id, text string) (models.Comment, error) {
	args := m.Called(ctx, id, text)
	var c models.Comment
	if val := args.Get(0); val != nil {
		c = val.(models.Comment)
	}
	return c, args.Error(1)
}

func (m *CommentRepositoryMock) DeleteWithReplies(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CommentRepositoryMock) ToggleLike(ctx context.Context, commentID, userID string) (bool, []string, error) {
	args := m.Called(ctx, commentID, userID)
	var likes []string
	if val := args.Get(1); val != nil {
		likes = val.([]string)
	}
	return args.Bool(0), likes, args.Error(2)
}
