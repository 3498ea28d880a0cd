package interfaces

import (
	"context"

	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// PostRepository manages posts, their comments and embedded counters.
type PostRepository interface {
	Create(ctx context.Context, q DBTX, p *models.Post) error
	GetByID(ctx context.Context, q DBTX, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, q DBTX, p *models.Post) error
	Delete(ctx context.Context, q DBTX, id, authorID uuid.UUID) error

	// ListByBergerie returns a bergerie's posts, newest first, cursor-paginated.
	ListByBergerie(ctx context.Context, q DBTX, bergerieID uuid.UUID, cursor string, limit int) ([]*models.Post, string, error)
	// ListByBergerieIDs returns posts belonging to any of the given bergeries,
	// newest first, cursor-paginated (feed query).
	ListByBergerieIDs(ctx context.Context, q DBTX, bergerieIDs []uuid.UUID, cursor string, limit int) ([]*models.Post, string, error)

	IncrementLikesCount(ctx context.Context, q DBTX, id uuid.UUID) error
	DecrementLikesCount(ctx context.Context, q DBTX, id uuid.UUID) error
	IncrementCommentsCount(ctx context.Context, q DBTX, id uuid.UUID) error

	AddComment(ctx context.Context, q DBTX, c *models.Comment) error
	ListComments(ctx context.Context, q DBTX, postID uuid.UUID, cursor string, limit int) ([]*models.Comment, string, error)
}
