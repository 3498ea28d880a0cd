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
	"bergerie-server/internal/utils"
)

// Запросы для счетчиков бержери. Счетчики меняются только знаковой дельтой;
// декременты не опускают значение ниже нуля.
const (
	incBergerieLikesQuery     = `UPDATE bergeries SET likes_count = likes_count + 1, updated_at = NOW() WHERE id = $1`
	decBergerieLikesQuery     = `UPDATE bergeries SET likes_count = GREATEST(0, likes_count - 1), updated_at = NOW() WHERE id = $1`
	incBergerieFollowersQuery = `UPDATE bergeries SET followers_count = followers_count + 1, updated_at = NOW() WHERE id = $1`
	decBergerieFollowersQuery = `UPDATE bergeries SET followers_count = GREATEST(0, followers_count - 1), updated_at = NOW() WHERE id = $1`
	incBergeriePostsQuery     = `UPDATE bergeries SET posts_count = posts_count + 1, updated_at = NOW() WHERE id = $1`
	decBergeriePostsQuery     = `UPDATE bergeries SET posts_count = GREATEST(0, posts_count - 1), updated_at = NOW() WHERE id = $1`

	selectBergerieFields = `id, owner_id, name, description, region, cover_url,
		likes_count, followers_count, posts_count, created_at, updated_at`
)

// pgBergerieRepository реализует интерфейс BergerieRepository для PostgreSQL.
type pgBergerieRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.BergerieRepository = (*pgBergerieRepository)(nil)

// NewPgBergerieRepository создает новый экземпляр репозитория бержери.
func NewPgBergerieRepository(logger *zap.Logger) interfaces.BergerieRepository {
	return &pgBergerieRepository{
		logger: logger.Named("PgBergerieRepo"),
	}
}

// Create сохраняет новую бержери.
func (r *pgBergerieRepository) Create(ctx context.Context, q interfaces.DBTX, b *models.Bergerie) error {
	query := `INSERT INTO bergeries (id, owner_id, name, description, region, cover_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`
	err := q.QueryRow(ctx, query, b.ID, b.OwnerID, b.Name, b.Description, b.Region, b.CoverURL).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create bergerie", zap.String("bergerieID", b.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create bergerie: %w", err)
	}
	r.logger.Info("Bergerie created", zap.String("bergerieID", b.ID.String()), zap.String("ownerID", b.OwnerID.String()))
	return nil
}

// GetByID возвращает бержери по ID.
func (r *pgBergerieRepository) GetByID(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Bergerie, error) {
	query := `SELECT ` + selectBergerieFields + ` FROM bergeries WHERE id = $1`
	var b models.Bergerie
	err := q.QueryRow(ctx, query, id).Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.Region, &b.CoverURL,
		&b.Stats.LikesCount, &b.Stats.FollowersCount, &b.Stats.PostsCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get bergerie", zap.String("bergerieID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get bergerie: %w", err)
	}
	return &b, nil
}

// Update обновляет изменяемые поля бержери. Проверка владельца - на уровне сервиса.
func (r *pgBergerieRepository) Update(ctx context.Context, q interfaces.DBTX, b *models.Bergerie) error {
	query := `UPDATE bergeries SET name = $2, description = $3, region = $4, cover_url = $5, updated_at = NOW()
		WHERE id = $1`
	tag, err := q.Exec(ctx, query, b.ID, b.Name, b.Description, b.Region, b.CoverURL)
	if err != nil {
		r.logger.Error("Failed to update bergerie", zap.String("bergerieID", b.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update bergerie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete удаляет бержери, принадлежащую владельцу. Membership-строки и посты
// удаляются каскадно на уровне схемы.
func (r *pgBergerieRepository) Delete(ctx context.Context, q interfaces.DBTX, id, ownerID uuid.UUID) error {
	tag, err := q.Exec(ctx, `DELETE FROM bergeries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete bergerie", zap.String("bergerieID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete bergerie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Bergerie deleted", zap.String("bergerieID", id.String()))
	return nil
}

// List возвращает бержери с курсорной пагинацией, новые первыми.
func (r *pgBergerieRepository) List(ctx context.Context, q interfaces.DBTX, cursor string, limit int) ([]*models.Bergerie, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", interfaces.ErrInvalidCursor
	}

	query := `SELECT ` + selectBergerieFields + ` FROM bergeries`
	var args []any
	if cursor != "" {
		args = append(args, cursorTime, cursorID)
		query += " WHERE (created_at, id) < ($1, $2)"
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bergeries", zap.Error(err))
		return nil, "", fmt.Errorf("failed to list bergeries: %w", err)
	}
	defer rows.Close()

	bergeries, err := scanBergeries(rows, limit)
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(bergeries) > limit {
		bergeries = bergeries[:limit]
		last := bergeries[len(bergeries)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}
	return bergeries, nextCursor, nil
}

// Search возвращает бержери, чье имя содержит term (без учета регистра),
// новые первыми, с курсорной пагинацией.
func (r *pgBergerieRepository) Search(ctx context.Context, q interfaces.DBTX, term, cursor string, limit int) ([]*models.Bergerie, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", interfaces.ErrInvalidCursor
	}

	query := `SELECT ` + selectBergerieFields + ` FROM bergeries WHERE name ILIKE '%' || $1 || '%'`
	args := []any{term}
	if cursor != "" {
		args = append(args, cursorTime, cursorID)
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to search bergeries", zap.String("term", term), zap.Error(err))
		return nil, "", fmt.Errorf("failed to search bergeries: %w", err)
	}
	defer rows.Close()

	bergeries, err := scanBergeries(rows, limit)
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(bergeries) > limit {
		bergeries = bergeries[:limit]
		last := bergeries[len(bergeries)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}
	return bergeries, nextCursor, nil
}

// ListByIDs возвращает бержери по списку ID.
func (r *pgBergerieRepository) ListByIDs(ctx context.Context, q interfaces.DBTX, ids []uuid.UUID) ([]*models.Bergerie, error) {
	if len(ids) == 0 {
		return []*models.Bergerie{}, nil
	}
	query := `SELECT ` + selectBergerieFields + ` FROM bergeries WHERE id = ANY($1)`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error("Failed to list bergeries by IDs", zap.Int("count", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("failed to list bergeries by ids: %w", err)
	}
	defer rows.Close()

	return scanBergeries(rows, len(ids))
}

func scanBergeries(rows pgx.Rows, capacity int) ([]*models.Bergerie, error) {
	bergeries := make([]*models.Bergerie, 0, capacity)
	for rows.Next() {
		var b models.Bergerie
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.Region, &b.CoverURL,
			&b.Stats.LikesCount, &b.Stats.FollowersCount, &b.Stats.PostsCount, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bergerie row: %w", err)
		}
		bergeries = append(bergeries, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bergerie rows: %w", err)
	}
	return bergeries, nil
}

func (r *pgBergerieRepository) applyCounterDelta(ctx context.Context, q interfaces.DBTX, query string, id uuid.UUID, what string) error {
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to update bergerie counter",
			zap.String("bergerieID", id.String()),
			zap.String("counter", what),
			zap.Error(err))
		return fmt.Errorf("failed to update bergerie %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Bergerie not found for counter update",
			zap.String("bergerieID", id.String()),
			zap.String("counter", what))
		return models.ErrNotFound
	}
	return nil
}

func (r *pgBergerieRepository) IncrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, incBergerieLikesQuery, id, "likes_count+")
}

func (r *pgBergerieRepository) DecrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, decBergerieLikesQuery, id, "likes_count-")
}

func (r *pgBergerieRepository) IncrementFollowersCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, incBergerieFollowersQuery, id, "followers_count+")
}

func (r *pgBergerieRepository) DecrementFollowersCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, decBergerieFollowersQuery, id, "followers_count-")
}

func (r *pgBergerieRepository) IncrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, incBergeriePostsQuery, id, "posts_count+")
}

func (r *pgBergerieRepository) DecrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, decBergeriePostsQuery, id, "posts_count-")
}
