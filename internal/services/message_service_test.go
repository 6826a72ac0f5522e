package services

import (
	"context"
	"errors"
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

type messageFixture struct {
	chats    *mocks.ChatRepositoryMock
	messages *mocks.MessageRepositoryMock
	users    *mocks.UserRepositoryMock
	notifier *mocks.NotifierMock
	events   *mocks.PublisherMock
	svc      *MessageService
}

func newMessageFixture() messageFixture {
	f := messageFixture{
		chats:    new(mocks.ChatRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
		users:    new(mocks.UserRepositoryMock),
		notifier: new(mocks.NotifierMock),
		events:   new(mocks.PublisherMock),
	}
	f.svc = NewMessageService(f.chats, f.messages, f.users, f.events)
	f.svc.SetNotifier(f.notifier)
	return f
}

func TestSendValidatesInput(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()

	_, err := f.svc.Send(ctx, "u1", "c1", "   ")
	assertKind(t, err, apperrors.KindInvalidInput)

	_, err = f.svc.Send(ctx, "u1", "", "hello")
	assertKind(t, err, apperrors.KindInvalidInput)

	f.chats.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendRejectsUnknownChatAndNonMembers(t *testing.T) {
	f := newMessageFixture()
	ctx := context.Background()
	f.chats.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound)
	f.chats.On("GetByID", mock.Anything, "c1").Return(models.Chat{ID: "c1", Users: []string{"u2", "u3"}}, nil)

	_, err := f.svc.Send(ctx, "u1", "missing", "hi")
	assert.ErrorIs(t, err, apperrors.ErrChatNotFound)

	_, err = f.svc.Send(ctx, "u1", "c1", "hi")
	assertKind(t, err, apperrors.KindForbidden)
	f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendPersistsAndFansOutToOtherMembers(t *testing.T) {
	f := newMessageFixture()
	sentAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.chats.On("GetByID", mock.Anything, "c1").Return(models.Chat{ID: "c1", Users: []string{"u1", "u2", "u3"}}, nil)
	f.messages.On("Create", mock.Anything, mock.AnythingOfType("*models.Message")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Message).CreatedAt = sentAt }).Return(nil)
	stubViews(f.users, f.messages, models.UserSummary{ID: "u1", Name: "Ana"}, models.UserSummary{ID: "u2"}, models.UserSummary{ID: "u3"})
	f.chats.On("SetLatestMessage", mock.Anything, "c1", mock.Anything, sentAt).Return(nil)
	f.notifier.On("DeliverMessage", mock.Anything, mock.Anything, []string{"u2", "u3"}).Return()
	f.events.On("PublishJSON", mock.Anything, "social.message.created", mock.Anything, mock.Anything).Return(nil)

	view, err := f.svc.Send(context.Background(), "u1", "c1", "  hello  ")
	require.NoError(t, err)

	assert.Equal(t, "hello", view.Content)
	assert.Equal(t, "Ana", view.Sender.Name)
	require.NotNil(t, view.Chat)
	require.NotNil(t, view.Chat.LatestMessage)
	assert.Equal(t, view.ID, view.Chat.LatestMessage.ID)
	f.chats.AssertCalled(t, "SetLatestMessage", mock.Anything, "c1", view.ID, sentAt)
	f.notifier.AssertCalled(t, "DeliverMessage", mock.Anything, mock.Anything, []string{"u2", "u3"})
	f.events.AssertExpectations(t)
}

func TestSendToleratesLatestPointerFailure(t *testing.T) {
	f := newMessageFixture()
	f.chats.On("GetByID", mock.Anything, "c1").Return(models.Chat{ID: "c1", Users: []string{"u1", "u2"}}, nil)
	f.messages.On("Create", mock.Anything, mock.Anything).Return(nil)
	stubViews(f.users, f.messages)
	f.chats.On("SetLatestMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.notifier.On("DeliverMessage", mock.Anything, mock.Anything, []string{"u2"}).Return()
	f.events.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := f.svc.Send(context.Background(), "u1", "c1", "hi")
	assert.NoError(t, err)
	f.notifier.AssertNumberOfCalls(t, "DeliverMessage", 1)
}

func TestSendSurfacesPersistenceFailure(t *testing.T) {
	f := newMessageFixture()
	f.chats.On("GetByID", mock.Anything, "c1").Return(models.Chat{ID: "c1", Users: []string{"u1", "u2"}}, nil)
	f.messages.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := f.svc.Send(context.Background(), "u1", "c1", "hi")
	assertKind(t, err, apperrors.KindInternal)
	f.notifier.AssertNotCalled(t, "DeliverMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestListReturnsMessagesInSendOrderWithCursor(t *testing.T) {
	f := newMessageFixture()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msgs := []models.Message{
		{ID: "m1", ChatID: "c1", SenderID: "u1", Content: "first", CreatedAt: base},
		{ID: "m2", ChatID: "c1", SenderID: "u2", Content: "second", CreatedAt: base.Add(time.Second)},
		{ID: "m3", ChatID: "c1", SenderID: "u1", Content: "third", CreatedAt: base.Add(2 * time.Second)},
	}
	f.chats.On("GetByID", mock.Anything, "c1").Return(models.Chat{ID: "c1", Users: []string{"u1", "u2"}}, nil)
	f.messages.On("ListAfter", mock.Anything, "c1", (*pagination.Cursor)(nil), 3).Return(msgs, nil)
	f.users.On("Summaries", mock.Anything, []string{"u1", "u2"}).Return([]models.UserSummary{{ID: "u1", Name: "Ana"}, {ID: "u2", Name: "Bo"}}, nil)

	page, err := f.svc.List(context.Background(), "u1", "c1", "", 2)
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	assert.Equal(t, "m1", page.Items[0].ID)
	assert.Equal(t, "m2", page.Items[1].ID)
	assert.Equal(t, "Bo", page.Items[1].Sender.Name)
	assert.True(t, page.HasMore)

	next, err := pagination.Decode(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "m2", next.ID)
}

func TestListRequiresMembershipAndValidCursor(t *testing.T) {
	f := newMessageFixture()
	f.chats.On("GetByID", mock.Anything, "c1").Return(models.Chat{ID: "c1", Users: []string{"u2", "u3"}}, nil)

	_, err := f.svc.List(context.Background(), "u1", "c1", "", 0)
	assertKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.List(context.Background(), "u2", "c1", "!!bad!!", 0)
	assertKind(t, err, apperrors.KindInvalidInput)
}
