package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"social-service/internal/models"
	"social-service/internal/pagination"
)

type CommunityRepositoryMock struct {
	mock.Mock
}

func (m *CommunityRepositoryMock) community(args mock.Arguments) (models.Community, error) {
	var c models.Community
	if val := args.Get(0); val != nil {
		c = val.(models.Community)
	}
	return c, args.Error(1)
}

func (m *CommunityRepositoryMock) list(args mock.Arguments) ([]models.Community, error) {
	var list []models.Community
	if val := args.Get(0); val != nil {
		list = val.([]models.Community)
	}
	return list, args.Error(1)
}

func (m *CommunityRepositoryMock) Create(ctx context.Context, community *models.Community) error {
	args := m.Called(ctx, community)
	return args.Error(0)
}

func (m *CommunityRepositoryMock) GetByID(ctx context.Context, id string) (models.Community, error) {
	return m.community(m.Called(ctx, id))
}

func (m *CommunityRepositoryMock) GetByName(ctx context.Context, name string) (models.Community, error) {
	return m.community(m.Called(ctx, name))
}

func (m *CommunityRepositoryMock) AddMember(ctx context.Context, communityID, userID string) (bool, error) {
	args := m.Called(ctx, communityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CommunityRepositoryMock) RemoveMember(ctx context.Context, communityID, userID string) (bool, error) {
	args := m.Called(ctx, communityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CommunityRepositoryMock) AddModerator(ctx context.Context, communityID, userID string) (bool, error) {
	args := m.Called(ctx, communityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CommunityRepositoryMock) RemoveModerator(ctx context.Context, communityID, userID string) (bool, error) {
	args := m.Called(ctx, communityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *CommunityRepositoryMock) Update(ctx context.Context, id string, upd models.CommunityUpdate) (models.Community, error) {
	return m.community(m.Called(ctx, id, upd))
}

func (m *CommunityRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CommunityRepositoryMock) List(ctx context.Context, skip, limit int) ([]models.Community, int, error) {
	args := m.Called(ctx, skip, limit)
	var list []models.Community
	if val := args.Get(0); val != nil {
		list = val.([]models.Community)
	}
	return list, args.Int(1), args.Error(2)
}

func (m *CommunityRepositoryMock) ListForMember(ctx context.Context, userID string) ([]models.Community, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *CommunityRepositoryMock) ByCategories(ctx context.Context, tags []string) ([]models.Community, error) {
	return m.list(m.Called(ctx, tags))
}

func (m *CommunityRepositoryMock) Search(ctx context.Context, query string) ([]models.Community, error) {
	return m.list(m.Called(ctx, query))
}

func (m *CommunityRepositoryMock) Trending(ctx context.Context, since time.Time, limit int) ([]models.Community, error) {
	return m.list(m.Called(ctx, since, limit))
}

func (m *CommunityRepositoryMock) JoinedTags(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var tags []string
	if val := args.Get(0); val != nil {
		tags = val.([]string)
	}
	return tags, args.Error(1)
}

func (m *CommunityRepositoryMock) Recommended(ctx context.Context, userID string, tags []string, limit int) ([]models.Community, error) {
	return m.list(m.Called(ctx, userID, tags, limit))
}

type CategoryRepositoryMock struct {
	mock.Mock
}

func (m *CategoryRepositoryMock) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *CategoryRepositoryMock) GetByID(ctx context.Context, id string) (models.Category, error) {
	args := m.Called(ctx, id)
	var c models.Category
	if val := args.Get(0); val != nil {
		c = val.(models.Category)
	}
	return c, args.Error(1)
}

func (m *CategoryRepositoryMock) ListByCommunity(ctx context.Context, communityID string) ([]models.Category, error) {
	args := m.Called(ctx, communityID)
	var list []models.Category
	if val := args.Get(0); val != nil {
		list = val.([]models.Category)
	}
	return list, args.Error(1)
}

func (m *CategoryRepositoryMock) Delete(ctx context.Context, category models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

type PostRepositoryMock struct {
	mock.Mock
}

func (m *PostRepositoryMock) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *PostRepositoryMock) GetByID(ctx context.Context, id string) (models.Post, error) {
	args := m.Called(ctx, id)
	var p models.Post
	if val := args.Get(0); val != nil {
		p = val.(models.Post)
	}
	return p, args.Error(1)
}

func (m *PostRepositoryMock) ListByCommunity(ctx context.Context, communityID string, before *pagination.Cursor, limit int) ([]models.Post, error) {
	args := m.Called(ctx, communityID, before, limit)
	var list []models.Post
	if val := args.Get(0); val != nil {
		list = val.([]models.Post)
	}
	return list, args.Error(1)
}

func (m *PostRepositoryMock) ListAll(ctx context.Context, before *pagination.Cursor, limit int) ([]models.Post, error) {
	args := m.Called(ctx, before, limit)
	var list []models.Post
	if val := args.Get(0); val != nil {
		list = val.([]models.Post)
	}
	return list, args.Error(1)
}

func (m *PostRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PostRepositoryMock) ToggleLike(ctx context.Context, postID, userID string) (bool, []string, error) {
	args := m.Called(ctx, postID, userID)
	var likes []string
	if val := args.Get(1); val != nil {
		likes = val.([]string)
	}
	return args.Bool(0), likes, args.Error(2)
}
