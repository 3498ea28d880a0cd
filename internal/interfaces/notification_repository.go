package interfaces

import (
	"context"

	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, q DBTX, n *models.Notification) error

	// ListByRecipient returns the user's notifications, newest first,
	// cursor-paginated.
	ListByRecipient(ctx context.Context, q DBTX, recipientID uuid.UUID, cursor string, limit int) ([]*models.Notification, string, error)

	// MarkRead marks one notification as read; scoped to the recipient.
	MarkRead(ctx context.Context, q DBTX, id, recipientID uuid.UUID) error
	// MarkAllRead marks all the recipient's notifications as read.
	MarkAllRead(ctx context.Context, q DBTX, recipientID uuid.UUID) error
	// Delete removes one notification; scoped to the recipient.
	Delete(ctx context.Context, q DBTX, id, recipientID uuid.UUID) error

	CountUnread(ctx context.Context, q DBTX, recipientID uuid.UUID) (int64, error)
}
