package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/apperrors"
	"social-service/internal/mocks"
	"social-service/internal/models"
	"social-service/internal/pagination"
	"social-service/internal/repositories"
)

func newPostFixture() (*PostService, *mocks.PostRepositoryMock, *mocks.CommunityRepositoryMock) {
	posts := new(mocks.PostRepositoryMock)
	communities := new(mocks.CommunityRepositoryMock)
	communities.On("GetByID", mock.Anything, "gophers").
		Return(fixtureCommunity("gophers", "creator", []string{"creator", "mod", "member"}, []string{"creator", "mod"}), nil)
	communities.On("GetByID", mock.Anything, mock.Anything).Return(nil, repositories.ErrNotFound)
	return NewPostService(posts, communities, nil), posts, communities
}

func TestPostCreateRequiresMembership(t *testing.T) {
	svc, posts, _ := newPostFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "stranger", "gophers", "hello")
	assertKind(t, err, apperrors.KindForbidden)

	_, err = svc.Create(ctx, "member", "nowhere", "hello")
	assert.ErrorIs(t, err, apperrors.ErrCommunityNotFound)

	_, err = svc.Create(ctx, "member", "gophers", "   ")
	assertKind(t, err, apperrors.KindInvalidInput)
	posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	posts.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).Return(nil).Once()
	post, err := svc.Create(ctx, "member", "gophers", " hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Content)
	assert.Equal(t, "member", post.UserID)
	assert.NotEmpty(t, post.ID)
	assert.Empty(t, post.Likes)
}

func TestPostDeleteByAuthorOrModerator(t *testing.T) {
	svc, posts, _ := newPostFixture()
	ctx := context.Background()
	posts.On("GetByID", mock.Anything, "p1").
		Return(models.Post{ID: "p1", CommunityID: "gophers", UserID: "member"}, nil)
	posts.On("Delete", mock.Anything, "p1").Return(nil)

	assertKind(t, svc.Delete(ctx, "other", "p1"), apperrors.KindForbidden)
	require.NoError(t, svc.Delete(ctx, "member", "p1"))
	require.NoError(t, svc.Delete(ctx, "mod", "p1"))
	require.NoError(t, svc.Delete(ctx, "creator", "p1"))
	posts.AssertNumberOfCalls(t, "Delete", 3)
}

func TestPostLikeToggle(t *testing.T) {
	svc, posts, _ := newPostFixture()
	ctx := context.Background()
	posts.On("GetByID", mock.Anything, "p1").Return(models.Post{ID: "p1", CommunityID: "gophers"}, nil)
	posts.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)
	posts.On("ToggleLike", mock.Anything, "p1", "u1").Return(true, []string{"u1"}, nil).Once()
	posts.On("ToggleLike", mock.Anything, "p1", "u1").Return(false, []string{}, nil).Once()

	first, err := svc.ToggleLike(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, []string{"u1"}, first.Likes)

	second, err := svc.ToggleLike(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Empty(t, second.Likes)

	_, err = svc.ToggleLike(ctx, "missing", "u1")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestPostListPagesNewestFirst(t *testing.T) {
	svc, posts, _ := newPostFixture()
	ctx := context.Background()
	now := time.Now()
	rows := []models.Post{
		{ID: "p3", CreatedAt: now},
		{ID: "p2", CreatedAt: now.Add(-time.Minute)},
		{ID: "p1", CreatedAt: now.Add(-2 * time.Minute)},
	}
	posts.On("ListByCommunity", mock.Anything, "gophers", (*pagination.Cursor)(nil), 3).Return(rows, nil)

	page, err := svc.ListByCommunity(ctx, "gophers", "", 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextCursor)

	_, err = svc.ListByCommunity(ctx, "nowhere", "", 2)
	assert.ErrorIs(t, err, apperrors.ErrCommunityNotFound)

	_, err = svc.ListAll(ctx, "%%%", 2)
	assertKind(t, err, apperrors.KindInvalidInput)
}
