package interfaces

import (
	"context"

	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// BergerieRepository manages bergerie records and their embedded counters.
// Counter methods apply signed deltas only; decrements clamp at zero.
type BergerieRepository interface {
	Create(ctx context.Context, q DBTX, b *models.Bergerie) error
	GetByID(ctx context.Context, q DBTX, id uuid.UUID) (*models.Bergerie, error)
	Update(ctx context.Context, q DBTX, b *models.Bergerie) error
	Delete(ctx context.Context, q DBTX, id, ownerID uuid.UUID) error

	// List returns bergeries newest first, cursor-paginated.
	List(ctx context.Context, q DBTX, cursor string, limit int) ([]*models.Bergerie, string, error)
	ListByIDs(ctx context.Context, q DBTX, ids []uuid.UUID) ([]*models.Bergerie, error)
	// Search returns bergeries whose name matches the term, newest first,
	// cursor-paginated.
	Search(ctx context.Context, q DBTX, term, cursor string, limit int) ([]*models.Bergerie, string, error)

	IncrementLikesCount(ctx context.Context, q DBTX, id uuid.UUID) error
	DecrementLikesCount(ctx context.Context, q DBTX, id uuid.UUID) error
	IncrementFollowersCount(ctx context.Context, q DBTX, id uuid.UUID) error
	DecrementFollowersCount(ctx context.Context, q DBTX, id uuid.UUID) error
	IncrementPostsCount(ctx context.Context, q DBTX, id uuid.UUID) error
	DecrementPostsCount(ctx context.Context, q DBTX, id uuid.UUID) error
}
