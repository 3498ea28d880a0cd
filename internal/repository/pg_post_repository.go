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

const (
	incPostLikesQuery    = `UPDATE posts SET likes_count = likes_count + 1, updated_at = NOW() WHERE id = $1`
	decPostLikesQuery    = `UPDATE posts SET likes_count = GREATEST(0, likes_count - 1), updated_at = NOW() WHERE id = $1`
	incPostCommentsQuery = `UPDATE posts SET comments_count = comments_count + 1, updated_at = NOW() WHERE id = $1`

	selectPostFields = `id, bergerie_id, author_id, caption, media_urls,
		likes_count, comments_count, created_at, updated_at`
)

// pgPostRepository реализует интерфейс PostRepository для PostgreSQL.
type pgPostRepository struct {
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.PostRepository = (*pgPostRepository)(nil)

// NewPgPostRepository создает новый экземпляр репозитория постов.
func NewPgPostRepository(logger *zap.Logger) interfaces.PostRepository {
	return &pgPostRepository{
		logger: logger.Named("PgPostRepo"),
	}
}

// Create сохраняет новый пост.
func (r *pgPostRepository) Create(ctx context.Context, q interfaces.DBTX, p *models.Post) error {
	query := `INSERT INTO posts (id, bergerie_id, author_id, caption, media_urls, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`
	err := q.QueryRow(ctx, query, p.ID, p.BergerieID, p.AuthorID, p.Caption, p.MediaURLs).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create post", zap.String("postID", p.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create post: %w", err)
	}
	r.logger.Info("Post created", zap.String("postID", p.ID.String()), zap.String("bergerieID", p.BergerieID.String()))
	return nil
}

// GetByID возвращает пост по ID.
func (r *pgPostRepository) GetByID(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Post, error) {
	query := `SELECT ` + selectPostFields + ` FROM posts WHERE id = $1`
	var p models.Post
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.BergerieID, &p.AuthorID, &p.Caption, &p.MediaURLs,
		&p.Stats.LikesCount, &p.Stats.CommentsCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get post", zap.String("postID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &p, nil
}

// Update обновляет изменяемые поля поста. Проверка автора - на уровне сервиса.
func (r *pgPostRepository) Update(ctx context.Context, q interfaces.DBTX, p *models.Post) error {
	query := `UPDATE posts SET caption = $2, media_urls = $3, updated_at = NOW() WHERE id = $1`
	tag, err := q.Exec(ctx, query, p.ID, p.Caption, p.MediaURLs)
	if err != nil {
		r.logger.Error("Failed to update post", zap.String("postID", p.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete удаляет пост автора. Лайки и комментарии удаляются каскадно.
func (r *pgPostRepository) Delete(ctx context.Context, q interfaces.DBTX, id, authorID uuid.UUID) error {
	tag, err := q.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		r.logger.Error("Failed to delete post", zap.String("postID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Post deleted", zap.String("postID", id.String()))
	return nil
}

// ListByBergerie возвращает посты бержери, новые первыми.
func (r *pgPostRepository) ListByBergerie(ctx context.Context, q interfaces.DBTX, bergerieID uuid.UUID, cursor string, limit int) ([]*models.Post, string, error) {
	return r.listPosts(ctx, q, `bergerie_id = $1`, []any{bergerieID}, cursor, limit)
}

// ListByBergerieIDs возвращает ленту: посты любой из перечисленных бержери.
func (r *pgPostRepository) ListByBergerieIDs(ctx context.Context, q interfaces.DBTX, bergerieIDs []uuid.UUID, cursor string, limit int) ([]*models.Post, string, error) {
	if len(bergerieIDs) == 0 {
		return []*models.Post{}, "", nil
	}
	return r.listPosts(ctx, q, `bergerie_id = ANY($1)`, []any{bergerieIDs}, cursor, limit)
}

func (r *pgPostRepository) listPosts(ctx context.Context, q interfaces.DBTX, where string, args []any, cursor string, limit int) ([]*models.Post, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", interfaces.ErrInvalidCursor
	}

	query := `SELECT ` + selectPostFields + ` FROM posts WHERE ` + where
	if cursor != "" {
		args = append(args, cursorTime, cursorID)
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list posts", zap.Error(err))
		return nil, "", fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, limit)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.BergerieID, &p.AuthorID, &p.Caption, &p.MediaURLs,
			&p.Stats.LikesCount, &p.Stats.CommentsCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate post rows: %w", err)
	}

	nextCursor := ""
	if len(posts) > limit {
		posts = posts[:limit]
		last := posts[len(posts)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}
	return posts, nextCursor, nil
}

func (r *pgPostRepository) applyCounterDelta(ctx context.Context, q interfaces.DBTX, query string, id uuid.UUID, what string) error {
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to update post counter",
			zap.String("postID", id.String()),
			zap.String("counter", what),
			zap.Error(err))
		return fmt.Errorf("failed to update post %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Post not found for counter update",
			zap.String("postID", id.String()),
			zap.String("counter", what))
		return models.ErrNotFound
	}
	return nil
}

func (r *pgPostRepository) IncrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, incPostLikesQuery, id, "likes_count+")
}

func (r *pgPostRepository) DecrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, decPostLikesQuery, id, "likes_count-")
}

func (r *pgPostRepository) IncrementCommentsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	return r.applyCounterDelta(ctx, q, incPostCommentsQuery, id, "comments_count+")
}

// AddComment сохраняет комментарий. Инкремент comments_count выполняет сервис
// в той же транзакции.
func (r *pgPostRepository) AddComment(ctx context.Context, q interfaces.DBTX, c *models.Comment) error {
	query := `INSERT INTO comments (id, post_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at`
	err := q.QueryRow(ctx, query, c.ID, c.PostID, c.AuthorID, c.Text).Scan(&c.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to add comment", zap.String("postID", c.PostID.String()), zap.Error(err))
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// ListComments возвращает комментарии поста, новые первыми.
func (r *pgPostRepository) ListComments(ctx context.Context, q interfaces.DBTX, postID uuid.UUID, cursor string, limit int) ([]*models.Comment, string, error) {
	cursorTime, cursorID, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", interfaces.ErrInvalidCursor
	}

	query := `SELECT id, post_id, author_id, text, created_at FROM comments WHERE post_id = $1`
	args := []any{postID}
	if cursor != "" {
		args = append(args, cursorTime, cursorID)
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list comments", zap.String("postID", postID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0, limit)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, "", fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to iterate comment rows: %w", err)
	}

	nextCursor := ""
	if len(comments) > limit {
		comments = comments[:limit]
		last := comments[len(comments)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}
	return comments, nextCursor, nil
}
