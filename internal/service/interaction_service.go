package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/messaging"
	"bergerie-server/internal/models"
)

// InteractionService defines the interface for like/follow toggles and the
// read paths built on membership rows.
type InteractionService interface {
	IsLiked(ctx context.Context, actorID, targetID uuid.UUID, targetType models.TargetType) (bool, error)
	IsFollowing(ctx context.Context, actorID, bergerieID uuid.UUID) (bool, error)
	GetInteractionStatus(ctx context.Context, actorID, bergerieID uuid.UUID) (*models.InteractionStatus, error)

	// ToggleLike flips the actor's like of the target and returns the
	// resulting state. The membership row and every counter it implies commit
	// in one transaction.
	ToggleLike(ctx context.Context, actorID, targetID uuid.UUID, targetType models.TargetType) (bool, error)

	// ToggleFollow flips the actor's follow of the bergerie. Follows are
	// bergerie-only; the signature leaves no room for other targets.
	ToggleFollow(ctx context.Context, actorID, bergerieID uuid.UUID) (bool, error)

	ListLikedByUser(ctx context.Context, userID uuid.UUID, targetType *models.TargetType, cursor string, limit int) ([]models.Like, string, error)
	ListFollowedBergeries(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.FollowedBergerie, string, error)
	ListFollowers(ctx context.Context, bergerieID uuid.UUID, cursor string, limit int) ([]models.BergerieFollower, string, error)
}

type interactionServiceImpl struct {
	db           interfaces.DBTX
	txManager    interfaces.TxManager
	likeRepo     interfaces.LikeRepository
	followRepo   interfaces.FollowRepository
	bergerieRepo interfaces.BergerieRepository
	postRepo     interfaces.PostRepository
	userRepo     interfaces.UserRepository
	statsCache   interfaces.StatsCache
	notifyPub    messaging.NotificationEventPublisher
	logger       *zap.Logger
}

// NewInteractionService creates a new instance of InteractionService.
func NewInteractionService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	likeRepo interfaces.LikeRepository,
	followRepo interfaces.FollowRepository,
	bergerieRepo interfaces.BergerieRepository,
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	statsCache interfaces.StatsCache,
	notifyPub messaging.NotificationEventPublisher,
	logger *zap.Logger,
) InteractionService {
	return &interactionServiceImpl{
		db:           db,
		txManager:    txManager,
		likeRepo:     likeRepo,
		followRepo:   followRepo,
		bergerieRepo: bergerieRepo,
		postRepo:     postRepo,
		userRepo:     userRepo,
		statsCache:   statsCache,
		notifyPub:    notifyPub,
		logger:       logger.Named("InteractionService"),
	}
}

// IsLiked проверяет, лайкнул ли пользователь цель. Ошибка хранилища
// пробрасывается наверх, а не маскируется под false.
func (s *interactionServiceImpl) IsLiked(ctx context.Context, actorID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	if !targetType.Valid() {
		return false, ErrInvalidTargetType
	}
	liked, err := s.likeRepo.Exists(ctx, s.db, actorID, targetID, targetType)
	if err != nil {
		s.logger.Error("Failed to check like existence",
			zap.String("actorID", actorID.String()),
			zap.String("targetID", targetID.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return liked, nil
}

// IsFollowing проверяет, подписан ли пользователь на бержери.
func (s *interactionServiceImpl) IsFollowing(ctx context.Context, actorID, bergerieID uuid.UUID) (bool, error) {
	following, err := s.followRepo.Exists(ctx, s.db, actorID, bergerieID)
	if err != nil {
		s.logger.Error("Failed to check follow existence",
			zap.String("actorID", actorID.String()),
			zap.String("bergerieID", bergerieID.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return following, nil
}

// GetInteractionStatus возвращает объединенное состояние лайка и подписки
// пользователя на бержери.
func (s *interactionServiceImpl) GetInteractionStatus(ctx context.Context, actorID, bergerieID uuid.UUID) (*models.InteractionStatus, error) {
	liked, err := s.IsLiked(ctx, actorID, bergerieID, models.TargetTypeBergerie)
	if err != nil {
		return nil, err
	}
	following, err := s.IsFollowing(ctx, actorID, bergerieID)
	if err != nil {
		return nil, err
	}
	return &models.InteractionStatus{IsLiked: liked, IsFollowing: following}, nil
}

// membershipOps параметризует общий каркас toggle для лайков и подписок.
// insert/remove - условные записи membership-строки, applyInc/applyDec -
// дельты счетчиков в той же транзакции.
type membershipOps struct {
	exists   func(ctx context.Context, q interfaces.DBTX) (bool, error)
	insert   func(ctx context.Context, tx interfaces.DBTX) (bool, error)
	remove   func(ctx context.Context, tx interfaces.DBTX) (bool, error)
	applyInc func(ctx context.Context, tx interfaces.DBTX) error
	applyDec func(ctx context.Context, tx interfaces.DBTX) error
}

// toggleMembership reads current existence to pick intent, then performs one
// atomic conditional transaction. A conditional write affecting zero rows is a
// benign race: the store is already in the desired state, so no counter delta
// is applied and the resulting state is returned as-is.
func (s *interactionServiceImpl) toggleMembership(ctx context.Context, ops membershipOps) (active bool, changed bool, err error) {
	exists, err := ops.exists(ctx, s.db)
	if err != nil {
		return false, false, err
	}

	if !exists {
		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context, tx interfaces.DBTX) error {
			inserted, insErr := ops.insert(txCtx, tx)
			if insErr != nil {
				return insErr
			}
			if !inserted {
				// Параллельный toggle уже создал строку
				return nil
			}
			changed = true
			return ops.applyInc(txCtx, tx)
		})
		if err != nil {
			return false, false, err
		}
		return true, changed, nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context, tx interfaces.DBTX) error {
		deleted, delErr := ops.remove(txCtx, tx)
		if delErr != nil {
			return delErr
		}
		if !deleted {
			// Параллельный toggle уже удалил строку
			return nil
		}
		changed = true
		return ops.applyDec(txCtx, tx)
	})
	if err != nil {
		return false, false, err
	}
	return false, changed, nil
}

// ToggleLike переключает лайк пользователя на цели (бержери или пост).
func (s *interactionServiceImpl) ToggleLike(ctx context.Context, actorID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	logFields := []zap.Field{
		zap.String("actorID", actorID.String()),
		zap.String("targetID", targetID.String()),
		zap.String("targetType", string(targetType)),
	}
	s.logger.Info("Toggling like", logFields...)

	if !targetType.Valid() {
		return false, ErrInvalidTargetType
	}

	// Цель должна существовать; заодно узнаем владельца для уведомления.
	ownerID, err := s.resolveTargetOwner(ctx, targetID, targetType)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Like target not found", logFields...)
			return false, models.ErrNotFound
		}
		s.logger.Error("Failed to resolve like target", append(logFields, zap.Error(err))...)
		return false, ErrInternal
	}

	ops := membershipOps{
		exists: func(ctx context.Context, q interfaces.DBTX) (bool, error) {
			return s.likeRepo.Exists(ctx, q, actorID, targetID, targetType)
		},
		insert: func(ctx context.Context, tx interfaces.DBTX) (bool, error) {
			return s.likeRepo.InsertIfAbsent(ctx, tx, actorID, targetID, targetType)
		},
		remove: func(ctx context.Context, tx interfaces.DBTX) (bool, error) {
			return s.likeRepo.DeleteIfPresent(ctx, tx, actorID, targetID, targetType)
		},
		applyInc: func(ctx context.Context, tx interfaces.DBTX) error {
			if err := s.incrementTargetLikes(ctx, tx, targetID, targetType); err != nil {
				return err
			}
			return s.userRepo.IncrementLikesGivenCount(ctx, tx, actorID)
		},
		applyDec: func(ctx context.Context, tx interfaces.DBTX) error {
			if err := s.decrementTargetLikes(ctx, tx, targetID, targetType); err != nil {
				return err
			}
			return s.userRepo.DecrementLikesGivenCount(ctx, tx, actorID)
		},
	}

	liked, changed, err := s.toggleMembership(ctx, ops)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrUserNotFound) {
			return false, models.ErrNotFound
		}
		s.logger.Error("Failed to toggle like", append(logFields, zap.Error(err))...)
		return false, ErrInternal
	}

	if changed {
		s.invalidateTargetStats(ctx, targetID, targetType)
		s.invalidateUserStats(ctx, actorID)
	}
	if changed && liked {
		s.publishNotification(actorID, ownerID, models.NotificationTypeLike, targetID, likeMessage(targetType))
	}

	s.logger.Info("Like toggled", append(logFields, zap.Bool("liked", liked), zap.Bool("changed", changed))...)
	return liked, nil
}

// ToggleFollow переключает подписку пользователя на бержери. Строка подписки,
// followers_count бержери и following_count пользователя коммитятся одной
// транзакцией.
func (s *interactionServiceImpl) ToggleFollow(ctx context.Context, actorID, bergerieID uuid.UUID) (bool, error) {
	logFields := []zap.Field{
		zap.String("actorID", actorID.String()),
		zap.String("bergerieID", bergerieID.String()),
	}
	s.logger.Info("Toggling follow", logFields...)

	bergerie, err := s.bergerieRepo.GetByID(ctx, s.db, bergerieID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("Follow target not found", logFields...)
			return false, models.ErrNotFound
		}
		s.logger.Error("Failed to resolve follow target", append(logFields, zap.Error(err))...)
		return false, ErrInternal
	}

	ops := membershipOps{
		exists: func(ctx context.Context, q interfaces.DBTX) (bool, error) {
			return s.followRepo.Exists(ctx, q, actorID, bergerieID)
		},
		insert: func(ctx context.Context, tx interfaces.DBTX) (bool, error) {
			return s.followRepo.InsertIfAbsent(ctx, tx, actorID, bergerieID)
		},
		remove: func(ctx context.Context, tx interfaces.DBTX) (bool, error) {
			return s.followRepo.DeleteIfPresent(ctx, tx, actorID, bergerieID)
		},
		applyInc: func(ctx context.Context, tx interfaces.DBTX) error {
			if err := s.bergerieRepo.IncrementFollowersCount(ctx, tx, bergerieID); err != nil {
				return err
			}
			return s.userRepo.IncrementFollowingCount(ctx, tx, actorID)
		},
		applyDec: func(ctx context.Context, tx interfaces.DBTX) error {
			if err := s.bergerieRepo.DecrementFollowersCount(ctx, tx, bergerieID); err != nil {
				return err
			}
			return s.userRepo.DecrementFollowingCount(ctx, tx, actorID)
		},
	}

	following, changed, err := s.toggleMembership(ctx, ops)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrUserNotFound) {
			return false, models.ErrNotFound
		}
		s.logger.Error("Failed to toggle follow", append(logFields, zap.Error(err))...)
		return false, ErrInternal
	}

	if changed {
		s.invalidateTargetStats(ctx, bergerieID, models.TargetTypeBergerie)
		s.invalidateUserStats(ctx, actorID)
	}
	if changed && following {
		s.publishNotification(actorID, bergerie.OwnerID, models.NotificationTypeFollow, bergerieID, "started following your bergerie")
	}

	s.logger.Info("Follow toggled", append(logFields, zap.Bool("following", following), zap.Bool("changed", changed))...)
	return following, nil
}

// ListLikedByUser возвращает лайки пользователя, опционально по типу цели.
func (s *interactionServiceImpl) ListLikedByUser(ctx context.Context, userID uuid.UUID, targetType *models.TargetType, cursor string, limit int) ([]models.Like, string, error) {
	if targetType != nil && !targetType.Valid() {
		return nil, "", ErrInvalidTargetType
	}
	limit = clampLimit(limit)

	likes, nextCursor, err := s.likeRepo.ListByUser(ctx, s.db, userID, targetType, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to list likes", zap.String("userID", userID.String()), zap.Error(err))
		return nil, "", ErrInternal
	}
	return likes, nextCursor, nil
}

// ListFollowedBergeries возвращает бержери, на которые подписан пользователь.
func (s *interactionServiceImpl) ListFollowedBergeries(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.FollowedBergerie, string, error) {
	limit = clampLimit(limit)

	followed, nextCursor, err := s.followRepo.ListFollowedBergeries(ctx, s.db, userID, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to list followed bergeries", zap.String("userID", userID.String()), zap.Error(err))
		return nil, "", ErrInternal
	}
	return followed, nextCursor, nil
}

// ListFollowers возвращает подписчиков бержери.
func (s *interactionServiceImpl) ListFollowers(ctx context.Context, bergerieID uuid.UUID, cursor string, limit int) ([]models.BergerieFollower, string, error) {
	limit = clampLimit(limit)

	followers, nextCursor, err := s.followRepo.ListFollowers(ctx, s.db, bergerieID, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to list followers", zap.String("bergerieID", bergerieID.String()), zap.Error(err))
		return nil, "", ErrInternal
	}
	return followers, nextCursor, nil
}

// --- helpers ---

func (s *interactionServiceImpl) resolveTargetOwner(ctx context.Context, targetID uuid.UUID, targetType models.TargetType) (uuid.UUID, error) {
	switch targetType {
	case models.TargetTypeBergerie:
		bergerie, err := s.bergerieRepo.GetByID(ctx, s.db, targetID)
		if err != nil {
			return uuid.Nil, err
		}
		return bergerie.OwnerID, nil
	case models.TargetTypePost:
		post, err := s.postRepo.GetByID(ctx, s.db, targetID)
		if err != nil {
			return uuid.Nil, err
		}
		return post.AuthorID, nil
	default:
		return uuid.Nil, ErrInvalidTargetType
	}
}

func (s *interactionServiceImpl) incrementTargetLikes(ctx context.Context, tx interfaces.DBTX, targetID uuid.UUID, targetType models.TargetType) error {
	if targetType == models.TargetTypeBergerie {
		return s.bergerieRepo.IncrementLikesCount(ctx, tx, targetID)
	}
	return s.postRepo.IncrementLikesCount(ctx, tx, targetID)
}

func (s *interactionServiceImpl) decrementTargetLikes(ctx context.Context, tx interfaces.DBTX, targetID uuid.UUID, targetType models.TargetType) error {
	if targetType == models.TargetTypeBergerie {
		return s.bergerieRepo.DecrementLikesCount(ctx, tx, targetID)
	}
	return s.postRepo.DecrementLikesCount(ctx, tx, targetID)
}

// invalidateTargetStats сбрасывает кэш счетчиков цели. Ошибки кэша только
// логируются: читатель при промахе пойдет в БД.
func (s *interactionServiceImpl) invalidateTargetStats(ctx context.Context, targetID uuid.UUID, targetType models.TargetType) {
	if s.statsCache == nil {
		return
	}
	var err error
	if targetType == models.TargetTypeBergerie {
		err = s.statsCache.InvalidateBergerie(ctx, targetID)
	} else {
		err = s.statsCache.InvalidatePost(ctx, targetID)
	}
	if err != nil {
		s.logger.Warn("Failed to invalidate target stats cache",
			zap.String("targetID", targetID.String()),
			zap.Error(err))
	}
}

func (s *interactionServiceImpl) invalidateUserStats(ctx context.Context, userID uuid.UUID) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate user stats cache",
			zap.String("userID", userID.String()),
			zap.Error(err))
	}
}

// publishNotification отправляет событие уведомления fire-and-forget: ошибка
// публикации логируется и никогда не откатывает сам toggle.
// Self-уведомления не отправляются.
func (s *interactionServiceImpl) publishNotification(senderID, recipientID uuid.UUID, notifType models.NotificationType, refID uuid.UUID, message string) {
	if s.notifyPub == nil || senderID == recipientID || recipientID == uuid.Nil {
		return
	}
	payload := messaging.NotificationEventPayload{
		EventID:     uuid.New(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		RefID:       refID,
		Message:     message,
		OccurredAt:  time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifyPub.PublishNotificationEvent(ctx, payload); err != nil {
			s.logger.Warn("Failed to publish notification event",
				zap.String("eventID", payload.EventID.String()),
				zap.String("recipientID", recipientID.String()),
				zap.Error(err))
		}
	}()
}

func likeMessage(targetType models.TargetType) string {
	if targetType == models.TargetTypeBergerie {
		return "liked your bergerie"
	}
	return "liked your post"
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
