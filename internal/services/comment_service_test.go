package services

import (
	"context"
	"sort"
	"sync"
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

// memComments is an in-memory CommentRepository with the same cascade and
// ordering rules as the SQL one.
type memComments struct {
	mu    sync.Mutex
	rows  map[string]models.Comment
	clock time.Time
}

func newMemComments() *memComments {
	return &memComments{rows: map[string]models.Comment{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memComments) Create(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	c.CreatedAt, c.UpdatedAt = m.clock, m.clock
	m.rows[c.ID] = *c
	return nil
}

func (m *memComments) GetByID(_ context.Context, id string) (models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return c, nil
}

func (m *memComments) filter(keep func(models.Comment) bool, desc bool) []models.Comment {
	out := []models.Comment{}
	for _, c := range m.rows {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *memComments) ListRoots(_ context.Context, postID string, before *pagination.Cursor, limit int) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(c models.Comment) bool {
		return c.PostID == postID && c.IsRoot() && (before == nil || c.CreatedAt.Before(before.CreatedAt))
	}, true)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memComments) ListReplies(_ context.Context, parentID string, after *pagination.Cursor, limit int) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filter(func(c models.Comment) bool {
		return c.ParentCommentID != nil && *c.ParentCommentID == parentID && (after == nil || c.CreatedAt.After(after.CreatedAt))
	}, false)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memComments) UpdateText(_ context.Context, id, text string) (models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	c.Text = text
	m.rows[id] = c
	return c, nil
}

func (m *memComments) DeleteWithReplies(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return 0, repositories.ErrNotFound
	}
	var removed int64
	for key, c := range m.rows {
		if key == id || (c.ParentCommentID != nil && *c.ParentCommentID == id) {
			delete(m.rows, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memComments) ToggleLike(_ context.Context, commentID, userID string) (bool, []string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.rows[commentID]
	likes := []string{}
	liked := true
	for _, id := range c.Likes {
		if id == userID {
			liked = false
			continue
		}
		likes = append(likes, id)
	}
	if liked {
		likes = append(likes, userID)
	}
	c.Likes = likes
	m.rows[commentID] = c
	return liked, likes, nil
}

func newCommentFixture() (*CommentService, *memComments) {
	posts := new(mocks.PostRepositoryMock)
	posts.On("GetByID", mock.Anything, "p1").Return(models.Post{ID: "p1"}, nil)
	posts.On("GetByID", mock.Anything, "p2").Return(models.Post{ID: "p2"}, nil)
	posts.On("GetByID", mock.Anything, mock.Anything).Return(nil, repositories.ErrNotFound)
	store := newMemComments()
	return NewCommentService(store, posts, nil), store
}

func reply(t *testing.T, svc *CommentService, author, postID, parentID, text string) models.Comment {
	t.Helper()
	c, err := svc.Create(context.Background(), author, CreateCommentInput{PostID: postID, Text: text, ParentCommentID: &parentID})
	require.NoError(t, err)
	return c
}

func TestCommentThreadsStayOneLevelDeep(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()

	root, err := svc.Create(ctx, "u1", CreateCommentInput{PostID: "p1", Text: "first"})
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	r1 := reply(t, svc, "u2", "p1", root.ID, "agreed")
	require.NotNil(t, r1.ParentCommentID)
	assert.Equal(t, root.ID, *r1.ParentCommentID)

	_, err = svc.Create(ctx, "u3", CreateCommentInput{PostID: "p1", Text: "nested", ParentCommentID: &r1.ID})
	assertKind(t, err, apperrors.KindInvalidInput)

	_, err = svc.Create(ctx, "u3", CreateCommentInput{PostID: "p2", Text: "elsewhere", ParentCommentID: &root.ID})
	assertKind(t, err, apperrors.KindInvalidInput)

	missing := "nope"
	_, err = svc.Create(ctx, "u3", CreateCommentInput{PostID: "p1", Text: "orphan", ParentCommentID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)

	_, err = svc.Create(ctx, "u3", CreateCommentInput{PostID: "ghost", Text: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)

	_, err = svc.Create(ctx, "u3", CreateCommentInput{PostID: "p1", Text: "   "})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestListForPostReturnsRootsNewestFirst(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()

	a, err := svc.Create(ctx, "u1", CreateCommentInput{PostID: "p1", Text: "a"})
	require.NoError(t, err)
	reply(t, svc, "u2", "p1", a.ID, "a.1")
	b, err := svc.Create(ctx, "u1", CreateCommentInput{PostID: "p1", Text: "b"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u1", CreateCommentInput{PostID: "p2", Text: "other post"})
	require.NoError(t, err)

	page, err := svc.ListForPost(ctx, "p1", "", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].ID)
	assert.True(t, page.HasMore)

	page, err = svc.ListForPost(ctx, "p1", page.NextCursor, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, a.ID, page.Items[0].ID)
	assert.False(t, page.HasMore)

	replies, err := svc.ListReplies(ctx, a.ID, "", 0)
	require.NoError(t, err)
	require.Len(t, replies.Items, 1)
	assert.Equal(t, "a.1", replies.Items[0].Text)

	_, err = svc.ListForPost(ctx, "p1", "%%%", 10)
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestDeleteIsAuthorOnlyAndCascadesToReplies(t *testing.T) {
	svc, store := newCommentFixture()
	ctx := context.Background()

	root, err := svc.Create(ctx, "u1", CreateCommentInput{PostID: "p1", Text: "root"})
	require.NoError(t, err)
	reply(t, svc, "u2", "p1", root.ID, "one")
	reply(t, svc, "u3", "p1", root.ID, "two")
	other, err := svc.Create(ctx, "u2", CreateCommentInput{PostID: "p1", Text: "survivor"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "u2", root.ID)
	assertKind(t, err, apperrors.KindForbidden)

	removed, err := svc.Delete(ctx, "u1", root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.Len(t, store.rows, 1)
	assert.Contains(t, store.rows, other.ID)

	_, err = svc.Get(ctx, root.ID)
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
}

func TestUpdateIsAuthorOnly(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()
	c, err := svc.Create(ctx, "u1", CreateCommentInput{PostID: "p1", Text: "draft"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "u2", c.ID, "hijack")
	assertKind(t, err, apperrors.KindForbidden)

	updated, err := svc.Update(ctx, "u1", c.ID, " final ")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Text)
}

func TestCommentLikeToggleRoundTrip(t *testing.T) {
	svc, _ := newCommentFixture()
	ctx := context.Background()
	c, err := svc.Create(ctx, "u1", CreateCommentInput{PostID: "p1", Text: "like me"})
	require.NoError(t, err)

	res, err := svc.ToggleLike(ctx, c.ID, "u2")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, []string{"u2"}, res.Likes)

	res, err = svc.ToggleLike(ctx, c.ID, "u2")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Empty(t, res.Likes)

	_, err = svc.ToggleLike(ctx, "missing", "u2")
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
}
