package interfaces

import (
	"context"

	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// FollowRepository определяет методы для работы с подписками на бержери.
// Подписки в этом дизайне возможны только на бержери.
type FollowRepository interface {
	// InsertIfAbsent conditionally creates the follow row keyed by
	// (userID, bergerieID). Returns true when a row was inserted.
	InsertIfAbsent(ctx context.Context, q DBTX, userID, bergerieID uuid.UUID) (bool, error)

	// DeleteIfPresent conditionally deletes the follow row. Returns true when
	// a row was deleted.
	DeleteIfPresent(ctx context.Context, q DBTX, userID, bergerieID uuid.UUID) (bool, error)

	// Exists проверяет, подписан ли пользователь на бержери.
	Exists(ctx context.Context, q DBTX, userID, bergerieID uuid.UUID) (bool, error)

	// ListFollowedBergeries returns bergeries followed by the user together
	// with follow timestamps, newest first, cursor-paginated.
	ListFollowedBergeries(ctx context.Context, q DBTX, userID uuid.UUID, cursor string, limit int) ([]models.FollowedBergerie, string, error)

	// ListFollowers returns the followers of a bergerie, newest first,
	// cursor-paginated.
	ListFollowers(ctx context.Context, q DBTX, bergerieID uuid.UUID, cursor string, limit int) ([]models.BergerieFollower, string, error)

	// ListFollowedBergerieIDs returns only the IDs of bergeries the user
	// follows (feed assembly).
	ListFollowedBergerieIDs(ctx context.Context, q DBTX, userID uuid.UUID) ([]uuid.UUID, error)

	// ListFollowerIDs returns only the IDs of users following the bergerie
	// (new_post fan-out).
	ListFollowerIDs(ctx context.Context, q DBTX, bergerieID uuid.UUID) ([]uuid.UUID, error)
}
