package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bergerie-server/internal/messaging"
)

// Mock NotificationEventPublisher
type NotificationEventPublisher struct {
	mock.Mock
}

func (m *NotificationEventPublisher) PublishNotificationEvent(ctx context.Context, payload messaging.NotificationEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
