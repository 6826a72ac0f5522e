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
)

type communityFixture struct {
	communities *mocks.CommunityRepositoryMock
	categories  *mocks.CategoryRepositoryMock
	users       *mocks.UserRepositoryMock
	svc         *CommunityService
}

func newCommunityFixture() communityFixture {
	f := communityFixture{
		communities: new(mocks.CommunityRepositoryMock),
		categories:  new(mocks.CategoryRepositoryMock),
		users:       new(mocks.UserRepositoryMock),
	}
	f.svc = NewCommunityService(f.communities, f.categories, f.users, nil, 7*24*time.Hour)
	return f
}

func fixtureCommunity(id, creator string, members, moderators []string) models.Community {
	return models.Community{ID: id, Name: id, Bio: "bio", CreatedBy: creator, Users: members, Moderators: moderators}
}

func TestCreateRequiresNameAndBio(t *testing.T) {
	f := newCommunityFixture()
	_, err := f.svc.Create(context.Background(), "c", CreateCommunityInput{Name: "gophers"})
	assertKind(t, err, apperrors.KindInvalidInput)
	f.communities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateMakesCreatorMemberAndModerator(t *testing.T) {
	f := newCommunityFixture()
	f.communities.On("Create", mock.Anything, mock.AnythingOfType("*models.Community")).
		Run(func(args mock.Arguments) {
			c := args.Get(1).(*models.Community)
			c.Users = []string{c.CreatedBy}
			c.Moderators = []string{c.CreatedBy}
		}).Return(nil)

	created, err := f.svc.Create(context.Background(), "creator", CreateCommunityInput{
		Name: "gophers", Bio: "we write go", Categories: []string{"go", " go", "tech", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "creator", created.CreatedBy)
	assert.Equal(t, []string{"go", "tech"}, []string(created.Categories))
	assert.True(t, created.HasMember("creator"))
	assert.True(t, created.HasModerator("creator"))
}

func TestModeratorScenario(t *testing.T) {
	f := newCommunityFixture()
	ctx := context.Background()

	f.communities.On("GetByID", mock.Anything, "k1").Return(fixtureCommunity("k1", "C", []string{"C"}, []string{"C"}), nil).Once()
	_, err := f.svc.AddModerator(ctx, "C", "k1", "M")
	assert.ErrorIs(t, err, apperrors.ErrNotAMember)

	withMember := fixtureCommunity("k1", "C", []string{"C", "M"}, []string{"C"})
	f.communities.On("GetByID", mock.Anything, "k1").Return(withMember, nil).Twice()
	f.communities.On("AddModerator", mock.Anything, "k1", "M").Return(true, nil)
	_, err = f.svc.AddModerator(ctx, "C", "k1", "M")
	require.NoError(t, err)

	f.communities.On("GetByID", mock.Anything, "k1").Return(fixtureCommunity("k1", "C", []string{"C", "M"}, []string{"C", "M"}), nil)
	_, err = f.svc.RemoveModerator(ctx, "C", "k1", "C")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)

	_, err = f.svc.AddModerator(ctx, "M", "k1", "C")
	assertKind(t, err, apperrors.KindForbidden)
}

func TestModeratorIdempotencyErrors(t *testing.T) {
	f := newCommunityFixture()
	ctx := context.Background()
	f.communities.On("GetByID", mock.Anything, "k1").Return(fixtureCommunity("k1", "C", []string{"C", "M", "N"}, []string{"C", "M"}), nil)
	f.communities.On("AddModerator", mock.Anything, "k1", "M").Return(false, nil)
	f.communities.On("RemoveModerator", mock.Anything, "k1", "N").Return(false, nil)

	_, err := f.svc.AddModerator(ctx, "C", "k1", "M")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyModerator)

	_, err = f.svc.RemoveModerator(ctx, "C", "k1", "N")
	assert.ErrorIs(t, err, apperrors.ErrNotAModerator)

	_, err = f.svc.AddModerator(ctx, "C", "k1", "C")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)
}

func TestJoinAndLeaveRules(t *testing.T) {
	f := newCommunityFixture()
	ctx := context.Background()
	f.communities.On("GetByID", mock.Anything, "k1").Return(fixtureCommunity("k1", "C", []string{"C", "U"}, []string{"C"}), nil)
	f.communities.On("AddMember", mock.Anything, "k1", "U").Return(false, nil)
	f.communities.On("RemoveMember", mock.Anything, "k1", "X").Return(false, nil)
	f.communities.On("RemoveMember", mock.Anything, "k1", "U").Return(true, nil)

	_, err := f.svc.Join(ctx, "k1", "U")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)

	assert.ErrorIs(t, f.svc.Leave(ctx, "k1", "C"), apperrors.ErrCreatorCannotLeave)
	assert.ErrorIs(t, f.svc.Leave(ctx, "k1", "X"), apperrors.ErrNotAMember)
	assert.NoError(t, f.svc.Leave(ctx, "k1", "U"))
	f.communities.AssertNotCalled(t, "RemoveMember", mock.Anything, "k1", "C")
}

func TestUpdateAuthorization(t *testing.T) {
	f := newCommunityFixture()
	ctx := context.Background()
	f.communities.On("GetByID", mock.Anything, "k1").Return(fixtureCommunity("k1", "C", []string{"C", "M", "U"}, []string{"C", "M"}), nil)
	bio := "new bio"
	creator := "U"

	_, err := f.svc.Update(ctx, "U", "k1", UpdateCommunityInput{Bio: &bio})
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.Update(ctx, "M", "k1", UpdateCommunityInput{CreatedBy: &creator})
	assertKind(t, err, apperrors.KindInvalidInput)

	_, err = f.svc.Update(ctx, "M", "k1", UpdateCommunityInput{Moderators: []string{"M", "U"}})
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.Update(ctx, "C", "k1", UpdateCommunityInput{Moderators: []string{"stranger"}})
	assert.ErrorIs(t, err, apperrors.ErrNotAMember)

	f.communities.On("Update", mock.Anything, "k1", mock.AnythingOfType("models.CommunityUpdate")).
		Return(fixtureCommunity("k1", "C", []string{"C", "M", "U"}, []string{"C", "U"}), nil)
	_, err = f.svc.Update(ctx, "C", "k1", UpdateCommunityInput{Moderators: []string{"U"}})
	require.NoError(t, err)

	call := f.communities.Calls[len(f.communities.Calls)-1]
	upd := call.Arguments.Get(2).(models.CommunityUpdate)
	assert.Equal(t, []string{"C", "U"}, upd.Moderators)

	_, err = f.svc.Update(ctx, "M", "k1", UpdateCommunityInput{Bio: &bio})
	assert.NoError(t, err)
}

func TestDeleteIsCreatorOnly(t *testing.T) {
	f := newCommunityFixture()
	ctx := context.Background()
	f.communities.On("GetByID", mock.Anything, "k1").Return(fixtureCommunity("k1", "C", []string{"C", "M"}, []string{"C", "M"}), nil)
	f.communities.On("Delete", mock.Anything, "k1").Return(nil)

	assertKind(t, f.svc.Delete(ctx, "M", "k1"), apperrors.KindForbidden)
	assert.NoError(t, f.svc.Delete(ctx, "C", "k1"))
}

func TestRecommendedNeverIncludesJoinedCommunities(t *testing.T) {
	f := newCommunityFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(models.User{ID: "u1", Interests: []string{"go"}}, nil)
	f.communities.On("JoinedTags", mock.Anything, "u1").Return([]string{"rust", "go"}, nil)
	f.communities.On("Recommended", mock.Anything, "u1", []string{"go", "rust"}, DefaultDiscoveryLimit).Return([]models.Community{
		fixtureCommunity("fresh", "x", []string{"x"}, nil),
		fixtureCommunity("joined", "y", []string{"y", "u1"}, nil),
	}, nil)

	got, err := f.svc.Recommended(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}

func TestRecommendedWithoutInterestsIsEmpty(t *testing.T) {
	f := newCommunityFixture()
	f.users.On("GetByID", mock.Anything, "u1").Return(models.User{ID: "u1"}, nil)
	f.communities.On("JoinedTags", mock.Anything, "u1").Return([]string{}, nil)

	got, err := f.svc.Recommended(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	f.communities.AssertNotCalled(t, "Recommended", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTrendingUsesWindowAndClampsLimit(t *testing.T) {
	f := newCommunityFixture()
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	f.communities.On("Trending", mock.Anything, now.Add(-7*24*time.Hour), MaxDiscoveryLimit).Return([]models.Community{}, nil)

	_, err := f.svc.Trending(context.Background(), 500)
	require.NoError(t, err)
	f.communities.AssertExpectations(t)
}

func TestSearchAndCategoryValidation(t *testing.T) {
	f := newCommunityFixture()
	ctx := context.Background()

	_, err := f.svc.Search(ctx, "  ")
	assertKind(t, err, apperrors.KindInvalidInput)

	_, err = f.svc.ByCategories(ctx, []string{"", " "})
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestListDefaultsPaging(t *testing.T) {
	f := newCommunityFixture()
	f.communities.On("List", mock.Anything, 0, DefaultCommunityPageSize).Return([]models.Community{}, 42, nil)

	got, err := f.svc.List(context.Background(), pagination.Offset{})
	require.NoError(t, err)
	assert.Equal(t, 42, got.Total)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, DefaultCommunityPageSize, got.Limit)
}

func TestCategoryManagement(t *testing.T) {
	f := newCommunityFixture()
	ctx := context.Background()
	f.communities.On("GetByID", mock.Anything, "k1").Return(fixtureCommunity("k1", "C", []string{"C", "M", "U"}, []string{"C", "M"}), nil)
	f.categories.On("Create", mock.Anything, mock.AnythingOfType("*models.Category")).Return(nil)
	f.categories.On("GetByID", mock.Anything, "cat-other").Return(models.Category{ID: "cat-other", CommunityID: "k2"}, nil)

	_, err := f.svc.CreateCategory(ctx, "U", "k1", "go")
	assertKind(t, err, apperrors.KindForbidden)

	cat, err := f.svc.CreateCategory(ctx, "M", "k1", " go ")
	require.NoError(t, err)
	assert.Equal(t, "go", cat.Name)
	assert.Equal(t, "k1", cat.CommunityID)

	err = f.svc.DeleteCategory(ctx, "C", "k1", "cat-other")
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}
