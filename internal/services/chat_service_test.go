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
	"social-service/internal/repositories"
)

type chatFixture struct {
	chats    *mocks.ChatRepositoryMock
	messages *mocks.MessageRepositoryMock
	users    *mocks.UserRepositoryMock
	svc      *ChatService
}

func newChatFixture() chatFixture {
	f := chatFixture{
		chats:    new(mocks.ChatRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
		users:    new(mocks.UserRepositoryMock),
	}
	f.svc = NewChatService(f.chats, f.messages, f.users, nil)
	return f
}

func groupChat(id, admin string, members ...string) models.Chat {
	return models.Chat{ID: id, ChatName: "team", IsGroupChat: true, GroupAdminID: &admin, Users: members}
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, PairKey("b", "a"), PairKey("a", "b"))
	assert.Equal(t, "a:b", PairKey("b", "a"))
}

func TestAccessOrCreateDirectIsIdempotent(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	stubViews(f.users, f.messages)
	f.users.On("Exists", mock.Anything, "u2").Return(true, nil)
	f.users.On("Exists", mock.Anything, "u1").Return(true, nil)

	var created models.Chat
	f.chats.On("GetByPairKey", mock.Anything, "u1:u2").Return(nil, repositories.ErrNotFound).Once()
	f.chats.On("CreateDirect", mock.Anything, mock.AnythingOfType("*models.Chat")).
		Run(func(args mock.Arguments) {
			chat := args.Get(1).(*models.Chat)
			chat.CreatedAt = time.Now()
			created = *chat
		}).Return(nil).Once()

	first, err := f.svc.AccessOrCreateDirect(ctx, "u1", "u2")
	require.NoError(t, err)

	f.chats.On("GetByPairKey", mock.Anything, "u1:u2").Return(created, nil)
	second, err := f.svc.AccessOrCreateDirect(ctx, "u1", "u2")
	require.NoError(t, err)
	third, err := f.svc.AccessOrCreateDirect(ctx, "u2", "u1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, third.ID)
	assert.False(t, first.IsGroupChat)
	f.chats.AssertNumberOfCalls(t, "CreateDirect", 1)
}

func TestAccessOrCreateDirectRefetchesOnUniqueViolation(t *testing.T) {
	f := newChatFixture()
	stubViews(f.users, f.messages)
	key := PairKey("u1", "u2")
	existing := models.Chat{ID: "winner", ChatName: directChatName, PairKey: &key, Users: []string{"u2", "u1"}}

	f.users.On("Exists", mock.Anything, "u2").Return(true, nil)
	f.chats.On("GetByPairKey", mock.Anything, key).Return(nil, repositories.ErrNotFound).Once()
	f.chats.On("CreateDirect", mock.Anything, mock.Anything).Return(repositories.ErrDuplicate)
	f.chats.On("GetByPairKey", mock.Anything, key).Return(existing, nil).Once()

	view, err := f.svc.AccessOrCreateDirect(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "winner", view.ID)
}

func TestAccessOrCreateDirectValidation(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.svc.AccessOrCreateDirect(ctx, "u1", " ")
	assertKind(t, err, apperrors.KindInvalidInput)

	_, err = f.svc.AccessOrCreateDirect(ctx, "u1", "u1")
	assertKind(t, err, apperrors.KindInvalidInput)

	f.users.On("Exists", mock.Anything, "ghost").Return(false, nil)
	_, err = f.svc.AccessOrCreateDirect(ctx, "u1", "ghost")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	f.chats.AssertNotCalled(t, "CreateDirect", mock.Anything, mock.Anything)
}

func TestCreateGroupAddsCreatorAsAdminAndMember(t *testing.T) {
	f := newChatFixture()
	f.messages.On("GetByIDs", mock.Anything, mock.Anything).Return([]models.Message{}, nil)
	f.users.On("Summaries", mock.Anything, []string{"u2", "u3"}).Return([]models.UserSummary{{ID: "u2"}, {ID: "u3"}}, nil).Once()
	f.users.On("Summaries", mock.Anything, mock.Anything).Return([]models.UserSummary{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}, nil)

	var stored models.Chat
	f.chats.On("CreateGroup", mock.Anything, mock.AnythingOfType("*models.Chat")).
		Run(func(args mock.Arguments) { stored = *args.Get(1).(*models.Chat) }).Return(nil)

	view, err := f.svc.CreateGroup(context.Background(), "u1", GroupInput{Name: " team ", Users: []string{"u2", "u3", "u2", "u1"}})
	require.NoError(t, err)

	assert.Equal(t, "team", stored.ChatName)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, []string(stored.Users))
	require.NotNil(t, stored.GroupAdminID)
	assert.Equal(t, "u1", *stored.GroupAdminID)
	require.NotNil(t, view.GroupAdmin)
	assert.Equal(t, "u1", view.GroupAdmin.ID)
	assert.Len(t, view.Users, 3)
}

func TestCreateGroupValidation(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.svc.CreateGroup(ctx, "u1", GroupInput{Name: "", Users: []string{"u2"}})
	assertKind(t, err, apperrors.KindInvalidInput)

	_, err = f.svc.CreateGroup(ctx, "u1", GroupInput{Name: "solo", Users: []string{"u1"}})
	assertKind(t, err, apperrors.KindInvalidInput)
	f.chats.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything)
}

func TestGroupMutationsRequireAdmin(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	f.chats.On("GetByID", mock.Anything, "g1").Return(groupChat("g1", "u1", "u1", "u2"), nil)
	f.chats.On("GetByID", mock.Anything, "d1").Return(models.Chat{ID: "d1", Users: []string{"u1", "u2"}}, nil)

	_, err := f.svc.Rename(ctx, "u2", "g1", "new")
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.AddMember(ctx, "u2", "g1", "u3")
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.Rename(ctx, "u1", "d1", "new")
	assertKind(t, err, apperrors.KindInvalidInput)

	f.chats.AssertNotCalled(t, "Rename", mock.Anything, mock.Anything, mock.Anything)
	f.chats.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddAndRemoveMemberRules(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	f.chats.On("GetByID", mock.Anything, "g1").Return(groupChat("g1", "u1", "u1", "u2"), nil)
	f.users.On("Exists", mock.Anything, "ghost").Return(false, nil)

	_, err := f.svc.AddMember(ctx, "u1", "g1", "u2")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)

	_, err = f.svc.AddMember(ctx, "u1", "g1", "ghost")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = f.svc.RemoveMember(ctx, "u1", "g1", "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)

	_, err = f.svc.RemoveMember(ctx, "u1", "g1", "u9")
	assert.ErrorIs(t, err, apperrors.ErrNotAMember)
}

func TestListFallsBackWhenLatestPointerDangles(t *testing.T) {
	f := newChatFixture()
	dangling := "gone"
	live := "m2"
	chats := []models.Chat{
		{ID: "c1", Users: []string{"u1", "u2"}, LatestMessageID: &dangling},
		{ID: "c2", Users: []string{"u1", "u3"}, LatestMessageID: &live},
	}
	f.chats.On("ListForUser", mock.Anything, "u1").Return(chats, nil)
	f.users.On("Summaries", mock.Anything, mock.Anything).Return([]models.UserSummary{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}, nil)
	f.messages.On("GetByIDs", mock.Anything, mock.Anything).Return([]models.Message{{ID: "m2", ChatID: "c2", Content: "hi"}}, nil)
	f.messages.On("Latest", mock.Anything, "c1").Return(models.Message{ID: "m1", ChatID: "c1", Content: "fallback"}, nil)

	views, err := f.svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].LatestMessage)
	assert.Equal(t, "m1", views[0].LatestMessage.ID)
	require.NotNil(t, views[1].LatestMessage)
	assert.Equal(t, "m2", views[1].LatestMessage.ID)
	f.messages.AssertNotCalled(t, "Latest", mock.Anything, "c2")
}

func TestDeleteRules(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	f.chats.On("GetByID", mock.Anything, "g1").Return(groupChat("g1", "u1", "u1", "u2"), nil)
	f.chats.On("GetByID", mock.Anything, "d1").Return(models.Chat{ID: "d1", Users: []string{"u1", "u2"}}, nil)
	f.chats.On("Delete", mock.Anything, "d1").Return(nil)

	assertKind(t, f.svc.Delete(ctx, "u2", "g1"), apperrors.KindForbidden)
	assertKind(t, f.svc.Delete(ctx, "u3", "d1"), apperrors.KindForbidden)
	assert.NoError(t, f.svc.Delete(ctx, "u2", "d1"))
}

func TestMemberCanLeaveGroup(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	stubViews(f.users, f.messages, models.UserSummary{ID: "u1"}, models.UserSummary{ID: "u3"})
	f.chats.On("GetByID", mock.Anything, "g1").Return(groupChat("g1", "u1", "u1", "u2", "u3"), nil).Once()
	f.chats.On("RemoveMember", mock.Anything, "g1", "u2").Return(nil).Once()
	f.chats.On("GetByID", mock.Anything, "g1").Return(groupChat("g1", "u1", "u1", "u3"), nil).Once()

	view, err := f.svc.RemoveMember(ctx, "u2", "g1", "u2")
	require.NoError(t, err)
	assert.Len(t, view.Users, 2)

	f.chats.On("GetByID", mock.Anything, "g1").Return(groupChat("g1", "u1", "u1", "u3"), nil)
	_, err = f.svc.RemoveMember(ctx, "u3", "g1", "u1")
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.RemoveMember(ctx, "u2", "g1", "u2")
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.RemoveMember(ctx, "u1", "g1", "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)
	f.chats.AssertNumberOfCalls(t, "RemoveMember", 1)
}

func TestSetCountRequiresMembership(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()
	stubViews(f.users, f.messages, models.UserSummary{ID: "u1"}, models.UserSummary{ID: "u2"})
	direct := models.Chat{ID: "d1", Users: []string{"u1", "u2"}}
	f.chats.On("GetByID", mock.Anything, "d1").Return(direct, nil).Once()
	f.chats.On("SetCount", mock.Anything, "d1", 4).Return(nil).Once()
	counted := direct
	counted.Count = 4
	f.chats.On("GetByID", mock.Anything, "d1").Return(counted, nil).Once()

	view, err := f.svc.SetCount(ctx, "u2", "d1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Count)

	f.chats.On("GetByID", mock.Anything, "d1").Return(direct, nil)
	_, err = f.svc.SetCount(ctx, "u9", "d1", 1)
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.SetCount(ctx, "u1", "d1", -1)
	assertKind(t, err, apperrors.KindInvalidInput)

	f.chats.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)
	_, err = f.svc.SetCount(ctx, "u1", "missing", 1)
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)
	f.chats.AssertNumberOfCalls(t, "SetCount", 1)
}
