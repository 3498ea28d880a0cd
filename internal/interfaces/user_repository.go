package interfaces

import (
	"context"

	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// UserRepository reads user profiles and maintains the user-side counters.
type UserRepository interface {
	GetByID(ctx context.Context, q DBTX, id uuid.UUID) (*models.User, error)

	IncrementFollowingCount(ctx context.Context, q DBTX, id uuid.UUID) error
	DecrementFollowingCount(ctx context.Context, q DBTX, id uuid.UUID) error
	IncrementPostsCount(ctx context.Context, q DBTX, id uuid.UUID) error
	DecrementPostsCount(ctx context.Context, q DBTX, id uuid.UUID) error
	IncrementLikesGivenCount(ctx context.Context, q DBTX, id uuid.UUID) error
	DecrementLikesGivenCount(ctx context.Context, q DBTX, id uuid.UUID) error
}
