package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
	"bergerie-server/internal/utils"
)

const (
	insertFollowQuery = `INSERT INTO follows (user_id, bergerie_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, bergerie_id) DO NOTHING`

	deleteFollowQuery = `DELETE FROM follows WHERE user_id = $1 AND bergerie_id = $2`

	checkFollowExistsQuery = `SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND bergerie_id = $2)`

	listFollowedBergerieIDsQuery = `SELECT bergerie_id FROM follows WHERE user_id = $1`

	listFollowerIDsQuery = `SELECT user_id FROM follows WHERE bergerie_id = $1`
)

// pgFollowRepository реализует интерфейс FollowRepository для PostgreSQL.
type pgFollowRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.FollowRepository = (*pgFollowRepository)(nil)

// NewPgFollowRepository создает новый экземпляр репозитория подписок.
func NewPgFollowRepository(logger *zap.Logger) interfaces.FollowRepository {
	return &pgFollowRepository{
		logger: logger.Named("PgFollowRepo"),
	}
}

// InsertIfAbsent добавляет запись о подписке, если ее еще нет.
func (r *pgFollowRepository) InsertIfAbsent(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	logFields := []zap.Field{
		zap.String("userID", userID.String()),
		zap.String("bergerieID", bergerieID.String()),
	}
	r.logger.Debug("Inserting follow record if absent", logFields...)

	tag, err := q.Exec(ctx, insertFollowQuery, userID, bergerieID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			r.logger.Warn("Bergerie not found (foreign key violation)", logFields...)
			return false, models.ErrNotFound
		}
		r.logger.Error("Failed to insert follow record", append(logFields, zap.Error(err))...)
		return false, fmt.Errorf("failed to insert follow: %w", err)
	}

	inserted := tag.RowsAffected() > 0
	if !inserted {
		r.logger.Debug("Follow record already existed", logFields...)
	}
	return inserted, nil
}

// DeleteIfPresent удаляет запись о подписке, если она есть.
func (r *pgFollowRepository) DeleteIfPresent(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	logFields := []zap.Field{
		zap.String("userID", userID.String()),
		zap.String("bergerieID", bergerieID.String()),
	}
	r.logger.Debug("Deleting follow record if present", logFields...)

	tag, err := q.Exec(ctx, deleteFollowQuery, userID, bergerieID)
	if err != nil {
		r.logger.Error("Failed to delete follow record", append(logFields, zap.Error(err))...)
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	deleted := tag.RowsAffected() > 0
	if !deleted {
		r.logger.Debug("Follow record did not exist", logFields...)
	}
	return deleted, nil
}

// Exists проверяет, подписан ли пользователь на бержери.
func (r *pgFollowRepository) Exists(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, checkFollowExistsQuery, userID, bergerieID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check follow existence",
			zap.String("userID", userID.String()),
			zap.String("bergerieID", bergerieID.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// ListFollowedBergeries возвращает бержери, на которые подписан пользователь.
func (r *pgFollowRepository) ListFollowedBergeries(ctx context.Context, q interfaces.DBTX, userID uuid.UUID, cursor string, limit int) ([]models.FollowedBergerie, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", interfaces.ErrInvalidCursor
	}

	query := `SELECT b.id, b.owner_id, b.name, b.description, b.region, b.cover_url,
			b.likes_count, b.followers_count, b.posts_count, b.created_at, b.updated_at,
			f.created_at AS followed_at
		FROM follows f
		JOIN bergeries b ON b.id = f.bergerie_id
		WHERE f.user_id = $1`
	args := []any{userID}
	if cursor != "" {
		args = append(args, cursorTime, cursorID)
		query += fmt.Sprintf(" AND (f.created_at, f.bergerie_id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY f.created_at DESC, f.bergerie_id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list followed bergeries", zap.String("userID", userID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to list followed bergeries: %w", err)
	}
	defer rows.Close()

	followed := make([]models.FollowedBergerie, 0, limit)
	for rows.Next() {
		var b models.Bergerie
		var fb models.FollowedBergerie
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.Region, &b.CoverURL,
			&b.Stats.LikesCount, &b.Stats.FollowersCount, &b.Stats.PostsCount, &b.CreatedAt, &b.UpdatedAt,
			&fb.FollowedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan followed bergerie row: %w", err)
		}
		fb.Bergerie = &b
		followed = append(followed, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate followed bergerie rows: %w", err)
	}

	nextCursor := ""
	if len(followed) > limit {
		followed = followed[:limit]
		last := followed[len(followed)-1]
		nextCursor = utils.EncodeCursor(last.FollowedAt, last.Bergerie.ID)
	}
	return followed, nextCursor, nil
}

// ListFollowers возвращает подписчиков бержери.
func (r *pgFollowRepository) ListFollowers(ctx context.Context, q interfaces.DBTX, bergerieID uuid.UUID, cursor string, limit int) ([]models.BergerieFollower, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", interfaces.ErrInvalidCursor
	}

	query := `SELECT u.id, u.username, u.display_name, u.avatar_url,
			u.followers_count, u.following_count, u.posts_count, u.likes_given_count, u.created_at,
			f.created_at AS followed_at
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.bergerie_id = $1`
	args := []any{bergerieID}
	if cursor != "" {
		args = append(args, cursorTime, cursorID)
		query += fmt.Sprintf(" AND (f.created_at, f.user_id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY f.created_at DESC, f.user_id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list followers", zap.String("bergerieID", bergerieID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to list followers: %w", err)
	}
	defer rows.Close()

	followers := make([]models.BergerieFollower, 0, limit)
	for rows.Next() {
		var u models.User
		var bf models.BergerieFollower
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL,
			&u.Stats.FollowersCount, &u.Stats.FollowingCount, &u.Stats.PostsCount, &u.Stats.LikesGivenCount, &u.CreatedAt,
			&bf.FollowedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan follower row: %w", err)
		}
		bf.User = &u
		followers = append(followers, bf)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate follower rows: %w", err)
	}

	nextCursor := ""
	if len(followers) > limit {
		followers = followers[:limit]
		last := followers[len(followers)-1]
		nextCursor = utils.EncodeCursor(last.FollowedAt, last.User.ID)
	}
	return followers, nextCursor, nil
}

// ListFollowedBergerieIDs возвращает только ID бержери, на которые подписан пользователь.
func (r *pgFollowRepository) ListFollowedBergerieIDs(ctx context.Context, q interfaces.DBTX, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, listFollowedBergerieIDsQuery, userID)
	if err != nil {
		r.logger.Error("Failed to list followed bergerie IDs", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list followed bergerie ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows, "bergerie id")
}

// ListFollowerIDs возвращает только ID подписчиков бержери.
func (r *pgFollowRepository) ListFollowerIDs(ctx context.Context, q interfaces.DBTX, bergerieID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, listFollowerIDsQuery, bergerieID)
	if err != nil {
		r.logger.Error("Failed to list follower IDs", zap.String("bergerieID", bergerieID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list follower ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows, "user id")
}

func scanIDs(rows pgx.Rows, what string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %ss: %w", what, err)
	}
	return ids, nil
}
