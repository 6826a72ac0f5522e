package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/mocks"
)

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, kind.String(), apperrors.KindOf(err).String(), err.Error())
	}
}

// stubViews makes view resolution succeed with whatever summaries are given.
func stubViews(users *mocks.UserRepositoryMock, messages *mocks.MessageRepositoryMock, summaries ...models.UserSummary) {
	users.On("Summaries", mock.Anything, mock.Anything).Return(summaries, nil)
	messages.On("GetByIDs", mock.Anything, mock.Anything).Return([]models.Message{}, nil)
}
