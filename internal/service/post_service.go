package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/messaging"
	"bergerie-server/internal/models"
)

// UpdatePostInput перечисляет изменяемые поля поста. Nil-поле не трогаем.
type UpdatePostInput struct {
	Caption   *string
	MediaURLs []string
}

// PostService defines the interface for posts, comments and the feed.
type PostService interface {
	// CreatePost создает пост: строка поста, posts_count бержери и
	// posts_count автора коммитятся одной транзакцией.
	CreatePost(ctx context.Context, authorID, bergerieID uuid.UUID, caption string, mediaURLs []string) (*models.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	UpdatePost(ctx context.Context, actorID, id uuid.UUID, input UpdatePostInput) (*models.Post, error)
	DeletePost(ctx context.Context, actorID, id uuid.UUID) error
	ListByBergerie(ctx context.Context, bergerieID uuid.UUID, cursor string, limit int) ([]*models.Post, string, error)

	// Feed возвращает посты бержери, на которые подписан пользователь.
	Feed(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]*models.Post, string, error)

	AddComment(ctx context.Context, authorID, postID uuid.UUID, text string) (*models.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID, cursor string, limit int) ([]*models.Comment, string, error)
}

type postServiceImpl struct {
	db           interfaces.DBTX
	txManager    interfaces.TxManager
	postRepo     interfaces.PostRepository
	bergerieRepo interfaces.BergerieRepository
	userRepo     interfaces.UserRepository
	followRepo   interfaces.FollowRepository
	statsCache   interfaces.StatsCache
	notifyPub    messaging.NotificationEventPublisher
	logger       *zap.Logger
}

// NewPostService creates a new instance of PostService.
func NewPostService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	postRepo interfaces.PostRepository,
	bergerieRepo interfaces.BergerieRepository,
	userRepo interfaces.UserRepository,
	followRepo interfaces.FollowRepository,
	statsCache interfaces.StatsCache,
	notifyPub messaging.NotificationEventPublisher,
	logger *zap.Logger,
) PostService {
	return &postServiceImpl{
		db:           db,
		txManager:    txManager,
		postRepo:     postRepo,
		bergerieRepo: bergerieRepo,
		userRepo:     userRepo,
		followRepo:   followRepo,
		statsCache:   statsCache,
		notifyPub:    notifyPub,
		logger:       logger.Named("PostService"),
	}
}

func (s *postServiceImpl) CreatePost(ctx context.Context, authorID, bergerieID uuid.UUID, caption string, mediaURLs []string) (*models.Post, error) {
	logFields := []zap.Field{
		zap.String("authorID", authorID.String()),
		zap.String("bergerieID", bergerieID.String()),
	}

	bergerie, err := s.bergerieRepo.GetByID(ctx, s.db, bergerieID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrBergerieNotFound
		}
		s.logger.Error("Failed to resolve bergerie for post", append(logFields, zap.Error(err))...)
		return nil, ErrInternal
	}
	if bergerie.OwnerID != authorID {
		s.logger.Warn("Non-owner attempted to post into bergerie", logFields...)
		return nil, models.ErrForbidden
	}

	post := &models.Post{
		ID:         uuid.New(),
		BergerieID: bergerieID,
		AuthorID:   authorID,
		Caption:    caption,
		MediaURLs:  mediaURLs,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context, tx interfaces.DBTX) error {
		if err := s.postRepo.Create(txCtx, tx, post); err != nil {
			return err
		}
		if err := s.bergerieRepo.IncrementPostsCount(txCtx, tx, bergerieID); err != nil {
			return err
		}
		return s.userRepo.IncrementPostsCount(txCtx, tx, authorID)
	})
	if err != nil {
		s.logger.Error("Failed to create post", append(logFields, zap.Error(err))...)
		return nil, ErrInternal
	}

	s.invalidateAfterPostChange(ctx, bergerieID, authorID)
	// Один new_post евент на пост; разветвление по подписчикам - забота
	// консьюмера, поэтому евент публикуется безусловно и без self-skip.
	s.publishNewPostEvent(authorID, bergerieID, post.ID)

	s.logger.Info("Post created", append(logFields, zap.String("postID", post.ID.String()))...)
	return post, nil
}

// GetPost возвращает пост, счетчики - через кэш с деградацией в БД.
func (s *postServiceImpl) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	if s.statsCache != nil {
		if stats, err := s.statsCache.GetPostStats(ctx, id); err == nil {
			post, dbErr := s.postRepo.GetByID(ctx, s.db, id)
			if dbErr != nil {
				return nil, s.mapGetError(dbErr, id)
			}
			post.Stats = *stats
			return post, nil
		} else if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.logger.Warn("Post stats cache read failed, falling back to DB", zap.String("postID", id.String()), zap.Error(err))
		}
	}

	post, err := s.postRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, s.mapGetError(err, id)
	}

	if s.statsCache != nil {
		if err := s.statsCache.SetPostStats(ctx, id, &post.Stats); err != nil {
			s.logger.Warn("Failed to populate post stats cache", zap.String("postID", id.String()), zap.Error(err))
		}
	}
	return post, nil
}

func (s *postServiceImpl) mapGetError(err error, id uuid.UUID) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrPostNotFound
	}
	s.logger.Error("Failed to get post", zap.String("postID", id.String()), zap.Error(err))
	return ErrInternal
}

// UpdatePost обновляет поля поста. Разрешено только автору.
func (s *postServiceImpl) UpdatePost(ctx context.Context, actorID, id uuid.UUID, input UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, s.mapGetError(err, id)
	}
	if post.AuthorID != actorID {
		s.logger.Warn("Non-author attempted post update",
			zap.String("actorID", actorID.String()),
			zap.String("postID", id.String()))
		return nil, models.ErrForbidden
	}

	if input.Caption != nil {
		post.Caption = *input.Caption
	}
	if input.MediaURLs != nil {
		post.MediaURLs = input.MediaURLs
	}

	if err := s.postRepo.Update(ctx, s.db, post); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrPostNotFound
		}
		s.logger.Error("Failed to update post", zap.String("postID", id.String()), zap.Error(err))
		return nil, ErrInternal
	}
	return post, nil
}

// DeletePost удаляет пост автора и декрементирует posts_count бержери
// и автора в той же транзакции. Лайки и комментарии каскадятся.
func (s *postServiceImpl) DeletePost(ctx context.Context, actorID, id uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return s.mapGetError(err, id)
	}
	if post.AuthorID != actorID {
		return models.ErrForbidden
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context, tx interfaces.DBTX) error {
		if err := s.postRepo.Delete(txCtx, tx, id, actorID); err != nil {
			return err
		}
		if err := s.bergerieRepo.DecrementPostsCount(txCtx, tx, post.BergerieID); err != nil {
			return err
		}
		return s.userRepo.DecrementPostsCount(txCtx, tx, actorID)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrPostNotFound
		}
		s.logger.Error("Failed to delete post", zap.String("postID", id.String()), zap.Error(err))
		return ErrInternal
	}

	s.invalidateAfterPostChange(ctx, post.BergerieID, actorID)
	if s.statsCache != nil {
		if err := s.statsCache.InvalidatePost(ctx, id); err != nil {
			s.logger.Warn("Failed to invalidate deleted post stats", zap.String("postID", id.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *postServiceImpl) ListByBergerie(ctx context.Context, bergerieID uuid.UUID, cursor string, limit int) ([]*models.Post, string, error) {
	limit = clampLimit(limit)

	posts, nextCursor, err := s.postRepo.ListByBergerie(ctx, s.db, bergerieID, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to list posts", zap.String("bergerieID", bergerieID.String()), zap.Error(err))
		return nil, "", ErrInternal
	}
	return posts, nextCursor, nil
}

func (s *postServiceImpl) Feed(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]*models.Post, string, error) {
	limit = clampLimit(limit)

	bergerieIDs, err := s.followRepo.ListFollowedBergerieIDs(ctx, s.db, userID)
	if err != nil {
		s.logger.Error("Failed to list followed bergerie IDs for feed", zap.String("userID", userID.String()), zap.Error(err))
		return nil, "", ErrInternal
	}
	if len(bergerieIDs) == 0 {
		return []*models.Post{}, "", nil
	}

	posts, nextCursor, err := s.postRepo.ListByBergerieIDs(ctx, s.db, bergerieIDs, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to list feed posts", zap.String("userID", userID.String()), zap.Error(err))
		return nil, "", ErrInternal
	}
	return posts, nextCursor, nil
}

// AddComment сохраняет комментарий и инкрементирует comments_count поста
// одной транзакцией.
func (s *postServiceImpl) AddComment(ctx context.Context, authorID, postID uuid.UUID, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyComment
	}

	post, err := s.postRepo.GetByID(ctx, s.db, postID)
	if err != nil {
		return nil, s.mapGetError(err, postID)
	}

	comment := &models.Comment{
		ID:       uuid.New(),
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context, tx interfaces.DBTX) error {
		if err := s.postRepo.AddComment(txCtx, tx, comment); err != nil {
			return err
		}
		return s.postRepo.IncrementCommentsCount(txCtx, tx, postID)
	})
	if err != nil {
		s.logger.Error("Failed to add comment",
			zap.String("postID", postID.String()),
			zap.String("authorID", authorID.String()),
			zap.Error(err))
		return nil, ErrInternal
	}

	if s.statsCache != nil {
		if err := s.statsCache.InvalidatePost(ctx, postID); err != nil {
			s.logger.Warn("Failed to invalidate post stats after comment", zap.String("postID", postID.String()), zap.Error(err))
		}
	}
	s.publishNotification(authorID, post.AuthorID, models.NotificationTypeComment, postID, "commented on your post")

	return comment, nil
}

func (s *postServiceImpl) ListComments(ctx context.Context, postID uuid.UUID, cursor string, limit int) ([]*models.Comment, string, error) {
	limit = clampLimit(limit)

	comments, nextCursor, err := s.postRepo.ListComments(ctx, s.db, postID, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to list comments", zap.String("postID", postID.String()), zap.Error(err))
		return nil, "", ErrInternal
	}
	return comments, nextCursor, nil
}

func (s *postServiceImpl) invalidateAfterPostChange(ctx context.Context, bergerieID, authorID uuid.UUID) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.InvalidateBergerie(ctx, bergerieID); err != nil {
		s.logger.Warn("Failed to invalidate bergerie stats", zap.String("bergerieID", bergerieID.String()), zap.Error(err))
	}
	if err := s.statsCache.InvalidateUser(ctx, authorID); err != nil {
		s.logger.Warn("Failed to invalidate user stats", zap.String("userID", authorID.String()), zap.Error(err))
	}
}

// publishNotification - fire-and-forget, как и в interaction service.
// События самому себе не публикуются.
func (s *postServiceImpl) publishNotification(senderID, recipientID uuid.UUID, notifType models.NotificationType, refID uuid.UUID, message string) {
	if s.notifyPub == nil || senderID == recipientID || recipientID == uuid.Nil {
		return
	}
	s.publishAsync(messaging.NotificationEventPayload{
		EventID:     uuid.New(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		RefID:       refID,
		Message:     message,
		OccurredAt:  time.Now().UTC(),
	})
}

// publishNewPostEvent публикует new_post. Получатель не указывается:
// консьюмер разворачивает евент по подписчикам бержери, так что self-skip
// здесь неприменим (автор отсекается на стороне консьюмера).
func (s *postServiceImpl) publishNewPostEvent(authorID, bergerieID, postID uuid.UUID) {
	if s.notifyPub == nil {
		return
	}
	s.publishAsync(messaging.NotificationEventPayload{
		EventID:    uuid.New(),
		SenderID:   authorID,
		BergerieID: bergerieID,
		Type:       models.NotificationTypeNewPost,
		RefID:      postID,
		Message:    "published a new post",
		OccurredAt: time.Now().UTC(),
	})
}

func (s *postServiceImpl) publishAsync(payload messaging.NotificationEventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifyPub.PublishNotificationEvent(ctx, payload); err != nil {
			s.logger.Warn("Failed to publish notification event",
				zap.String("eventID", payload.EventID.String()),
				zap.String("type", string(payload.Type)),
				zap.Error(err))
		}
	}()
}
