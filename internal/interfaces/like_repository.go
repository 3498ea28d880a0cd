package interfaces

import (
	"context"

	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// LikeRepository определяет методы для работы с membership-строками лайков.
// Строка идентифицируется составным ключом (userID, targetID, targetType);
// условные записи по этому ключу заменяют схему "сначала запрос, потом запись".
type LikeRepository interface {
	// InsertIfAbsent conditionally creates the like row. Returns true when a
	// row was actually inserted, false when it already existed (benign race or
	// repeated call). Returns models.ErrNotFound on a missing target (FK).
	InsertIfAbsent(ctx context.Context, q DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error)

	// DeleteIfPresent conditionally deletes the like row. Returns true when a
	// row was actually deleted, false when there was nothing to delete.
	DeleteIfPresent(ctx context.Context, q DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error)

	// Exists проверяет, лайкнул ли пользователь цель.
	Exists(ctx context.Context, q DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error)

	// CountForTarget returns the authoritative number of like rows for a
	// target (useful to resync a drifted denormalized counter).
	CountForTarget(ctx context.Context, q DBTX, targetID uuid.UUID, targetType models.TargetType) (int64, error)

	// ListByUser returns the user's likes, newest first, cursor-paginated.
	// targetType narrows the listing when non-nil.
	ListByUser(ctx context.Context, q DBTX, userID uuid.UUID, targetType *models.TargetType, cursor string, limit int) ([]models.Like, string, error)
}
