package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
)

// NotificationService defines the interface for reading and acknowledging
// a user's in-app notifications.
type NotificationService interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]*models.Notification, string, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationServiceImpl struct {
	db               interfaces.DBTX
	notificationRepo interfaces.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(
	db interfaces.DBTX,
	notificationRepo interfaces.NotificationRepository,
	logger *zap.Logger,
) NotificationService {
	return &notificationServiceImpl{
		db:               db,
		notificationRepo: notificationRepo,
		logger:           logger.Named("NotificationService"),
	}
}

func (s *notificationServiceImpl) ListNotifications(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]*models.Notification, string, error) {
	limit = clampLimit(limit)

	notifications, nextCursor, err := s.notificationRepo.ListByRecipient(ctx, s.db, userID, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to list notifications", zap.String("userID", userID.String()), zap.Error(err))
		return nil, "", ErrInternal
	}
	return notifications, nextCursor, nil
}

// MarkRead помечает уведомление прочитанным. Работает только для получателя.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.notificationRepo.MarkRead(ctx, s.db, notificationID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("Failed to mark notification read",
			zap.String("userID", userID.String()),
			zap.String("notificationID", notificationID.String()),
			zap.Error(err))
		return ErrInternal
	}
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, s.db, userID); err != nil {
		s.logger.Error("Failed to mark all notifications read", zap.String("userID", userID.String()), zap.Error(err))
		return ErrInternal
	}
	return nil
}

// DeleteNotification удаляет уведомление. Работает только для получателя.
func (s *notificationServiceImpl) DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.notificationRepo.Delete(ctx, s.db, notificationID, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("Failed to delete notification",
			zap.String("userID", userID.String()),
			zap.String("notificationID", notificationID.String()),
			zap.Error(err))
		return ErrInternal
	}
	return nil
}

func (s *notificationServiceImpl) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, s.db, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", zap.String("userID", userID.String()), zap.Error(err))
		return 0, ErrInternal
	}
	return count, nil
}
