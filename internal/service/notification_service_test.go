package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	interfaceMocks "bergerie-server/internal/interfaces/mocks"
	"bergerie-server/internal/models"
	"bergerie-server/internal/service"
)

func TestDeleteNotification(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	notificationID := uuid.New()

	mockRepo := new(interfaceMocks.NotificationRepository)
	mockRepo.On("Delete", ctx, mock.Anything, notificationID, userID).Return(nil).Once()

	svc := service.NewNotificationService(nil, mockRepo, zap.NewNop())

	require.NoError(t, svc.DeleteNotification(ctx, userID, notificationID))
	mockRepo.AssertExpectations(t)
}

// Чужое или несуществующее уведомление: репозиторий не находит строку.
func TestDeleteNotification_NotFound(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	notificationID := uuid.New()

	mockRepo := new(interfaceMocks.NotificationRepository)
	mockRepo.On("Delete", ctx, mock.Anything, notificationID, userID).
		Return(models.ErrNotFound).Once()

	svc := service.NewNotificationService(nil, mockRepo, zap.NewNop())

	err := svc.DeleteNotification(ctx, userID, notificationID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteNotification_RepoFailure(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	notificationID := uuid.New()

	mockRepo := new(interfaceMocks.NotificationRepository)
	mockRepo.On("Delete", ctx, mock.Anything, notificationID, userID).
		Return(errors.New("connection reset")).Once()

	svc := service.NewNotificationService(nil, mockRepo, zap.NewNop())

	err := svc.DeleteNotification(ctx, userID, notificationID)
	assert.ErrorIs(t, err, service.ErrInternal)
}
