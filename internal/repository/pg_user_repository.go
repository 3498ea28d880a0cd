package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
)

const (
	incUserFollowingQuery  = `UPDATE users SET following_count = following_count + 1 WHERE id = $1`
	decUserFollowingQuery  = `UPDATE users SET following_count = GREATEST(0, following_count - 1) WHERE id = $1`
	incUserPostsQuery      = `UPDATE users SET posts_count = posts_count + 1 WHERE id = $1`
	decUserPostsQuery      = `UPDATE users SET posts_count = GREATEST(0, posts_count - 1) WHERE id = $1`
	incUserLikesGivenQuery = `UPDATE users SET likes_given_count = likes_given_count + 1 WHERE id = $1`
	decUserLikesGivenQuery = `UPDATE users SET likes_given_count = GREATEST(0, likes_given_count - 1) WHERE id = $1`
)

// pgUserRepository реализует интерфейс UserRepository для PostgreSQL.
type pgUserRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

// NewPgUserRepository создает новый экземпляр репозитория пользователей.
func NewPgUserRepository(logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		logger: logger.Named("PgUserRepo"),
	}
}

// GetByID возвращает профиль пользователя.
func (r *pgUserRepository) GetByID(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, username, display_name, avatar_url,
			followers_count, following_count, posts_count, likes_given_count, created_at
		FROM users WHERE id = $1`
	var u models.User
	err := q.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL,
		&u.Stats.FollowersCount, &u.Stats.FollowingCount, &u.Stats.PostsCount, &u.Stats.LikesGivenCount, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user", zap.String("userID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *pgUserRepository) applyCounterDelta(ctx context.Context, q interfaces.DBTX, query string, id uuid.UUID, what string) error {
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to update user counter",
			zap.String("userID", id.String()),
			zap.String("counter", what),
			zap.Error(err))
		return fmt.Errorf("failed to update user %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("User not found for counter update",
			zap.String("userID", id.String()),
			zap.String("counter", what))
		return models.ErrUserNotFound
	}
	return nil
}

func (r *pgUserRepository) IncrementFollowingCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, incUserFollowingQuery, id, "following_count+")
}

func (r *pgUserRepository) DecrementFollowingCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, decUserFollowingQuery, id, "following_count-")
}

func (r *pgUserRepository) IncrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, incUserPostsQuery, id, "posts_count+")
}

func (r *pgUserRepository) DecrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, decUserPostsQuery, id, "posts_count-")
}

func (r *pgUserRepository) IncrementLikesGivenCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, incUserLikesGivenQuery, id, "likes_given_count+")
}

func (r *pgUserRepository) DecrementLikesGivenCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, decUserLikesGivenQuery, id, "likes_given_count-")
}
