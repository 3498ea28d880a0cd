package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
	"bergerie-server/internal/utils"
)

// pgNotificationRepository реализует интерфейс NotificationRepository для PostgreSQL.
type pgNotificationRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.NotificationRepository = (*pgNotificationRepository)(nil)

// NewPgNotificationRepository создает новый экземпляр репозитория уведомлений.
func NewPgNotificationRepository(logger *zap.Logger) interfaces.NotificationRepository {
	return &pgNotificationRepository{
		logger: logger.Named("PgNotificationRepo"),
	}
}

// Create сохраняет уведомление.
func (r *pgNotificationRepository) Create(ctx context.Context, q interfaces.DBTX, n *models.Notification) error {
	query := `INSERT INTO notifications (id, recipient_id, sender_id, type, ref_id, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		RETURNING created_at`
	err := q.QueryRow(ctx, query, n.ID, n.RecipientID, n.SenderID, n.Type, n.RefID, n.Message).Scan(&n.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("recipientID", n.RecipientID.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByRecipient возвращает уведомления пользователя, новые первыми.
func (r *pgNotificationRepository) ListByRecipient(ctx context.Context, q interfaces.DBTX, recipientID uuid.UUID, cursor string, limit int) ([]*models.Notification, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", interfaces.ErrInvalidCursor
	}

	query := `SELECT id, recipient_id, sender_id, type, ref_id, message, read, created_at
		FROM notifications WHERE recipient_id = $1`
	args := []any{recipientID}
	if cursor != "" {
		args = append(args, cursorTime, cursorID)
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("recipientID", recipientID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0, limit)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.RefID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate notification rows: %w", err)
	}

	nextCursor := ""
	if len(notifications) > limit {
		notifications = notifications[:limit]
		last := notifications[len(notifications)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}
	return notifications, nextCursor, nil
}

// MarkRead помечает уведомление прочитанным.
func (r *pgNotificationRepository) MarkRead(ctx context.Context, q interfaces.DBTX, id, recipientID uuid.UUID) error {
	tag, err := q.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.String("notificationID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными.
func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, q interfaces.DBTX, recipientID uuid.UUID) error {
	_, err := q.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`, recipientID)
	if err != nil {
		r.logger.Error("Failed to mark all notifications read", zap.String("recipientID", recipientID.String()), zap.Error(err))
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return nil
}

// Delete удаляет уведомление получателя.
func (r *pgNotificationRepository) Delete(ctx context.Context, q interfaces.DBTX, id, recipientID uuid.UUID) error {
	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		r.logger.Error("Failed to delete notification", zap.String("notificationID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (r *pgNotificationRepository) CountUnread(ctx context.Context, q interfaces.DBTX, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`, recipientID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count unread notifications", zap.String("recipientID", recipientID.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
