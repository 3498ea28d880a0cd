package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
	"bergerie-server/internal/utils"
)

// Запросы для работы с лайками. Составной первичный ключ
// (user_id, target_id, target_type) делает insert/delete условными записями:
// проверка существования и сама запись - одна атомарная операция хранилища.
const (
	insertLikeQuery = `INSERT INTO likes (user_id, target_id, target_type, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, target_id, target_type) DO NOTHING`

	deleteLikeQuery = `DELETE FROM likes WHERE user_id = $1 AND target_id = $2 AND target_type = $3`

	checkLikeExistsQuery = `SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND target_id = $2 AND target_type = $3)`

	countLikesForTargetQuery = `SELECT COUNT(*) FROM likes WHERE target_id = $1 AND target_type = $2`
)

// pgLikeRepository реализует интерфейс LikeRepository для PostgreSQL.
type pgLikeRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.LikeRepository = (*pgLikeRepository)(nil)

// NewPgLikeRepository создает новый экземпляр репозитория лайков.
func NewPgLikeRepository(logger *zap.Logger) interfaces.LikeRepository {
	return &pgLikeRepository{
		logger: logger.Named("PgLikeRepo"),
	}
}

// InsertIfAbsent добавляет запись о лайке, если ее еще нет.
func (r *pgLikeRepository) InsertIfAbsent(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	logFields := []zap.Field{
		zap.String("userID", userID.String()),
		zap.String("targetID", targetID.String()),
		zap.String("targetType", string(targetType)),
	}
	r.logger.Debug("Inserting like record if absent", logFields...)

	tag, err := q.Exec(ctx, insertLikeQuery, userID, targetID, targetType)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			r.logger.Warn("Like target not found (foreign key violation)", logFields...)
			return false, models.ErrNotFound
		}
		r.logger.Error("Failed to insert like record", append(logFields, zap.Error(err))...)
		return false, fmt.Errorf("failed to insert like: %w", err)
	}

	inserted := tag.RowsAffected() > 0
	if !inserted {
		r.logger.Debug("Like record already existed", logFields...)
	}
	return inserted, nil
}

// DeleteIfPresent удаляет запись о лайке, если она есть.
func (r *pgLikeRepository) DeleteIfPresent(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	logFields := []zap.Field{
		zap.String("userID", userID.String()),
		zap.String("targetID", targetID.String()),
		zap.String("targetType", string(targetType)),
	}
	r.logger.Debug("Deleting like record if present", logFields...)

	tag, err := q.Exec(ctx, deleteLikeQuery, userID, targetID, targetType)
	if err != nil {
		r.logger.Error("Failed to delete like record", append(logFields, zap.Error(err))...)
		return false, fmt.Errorf("failed to delete like: %w", err)
	}

	deleted := tag.RowsAffected() > 0
	if !deleted {
		r.logger.Debug("Like record did not exist", logFields...)
	}
	return deleted, nil
}

// Exists проверяет, лайкнул ли пользователь цель.
func (r *pgLikeRepository) Exists(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, checkLikeExistsQuery, userID, targetID, targetType).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check like existence",
			zap.String("userID", userID.String()),
			zap.String("targetID", targetID.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return exists, nil
}

// CountForTarget возвращает фактическое количество лайков цели.
func (r *pgLikeRepository) CountForTarget(ctx context.Context, q interfaces.DBTX, targetID uuid.UUID, targetType models.TargetType) (int64, error) {
	var count int64
	err := q.QueryRow(ctx, countLikesForTargetQuery, targetID, targetType).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count likes for target",
			zap.String("targetID", targetID.String()),
			zap.Error(err))
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// ListByUser возвращает лайки пользователя с курсорной пагинацией.
func (r *pgLikeRepository) ListByUser(ctx context.Context, q interfaces.DBTX, userID uuid.UUID, targetType *models.TargetType, cursor string, limit int) ([]models.Like, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", interfaces.ErrInvalidCursor
	}

	query := `SELECT user_id, target_id, target_type, created_at FROM likes WHERE user_id = $1`
	args := []any{userID}
	if targetType != nil {
		args = append(args, *targetType)
		query += fmt.Sprintf(" AND target_type = $%d", len(args))
	}
	if cursor != "" {
		args = append(args, cursorTime, cursorID)
		query += fmt.Sprintf(" AND (created_at, target_id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, target_id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list likes by user", zap.String("userID", userID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	likes := make([]models.Like, 0, limit)
	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.UserID, &l.TargetID, &l.TargetType, &l.CreatedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan like row: %w", err)
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate like rows: %w", err)
	}

	nextCursor := ""
	if len(likes) > limit {
		likes = likes[:limit]
		last := likes[len(likes)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.TargetID)
	}
	return likes, nextCursor, nil
}
