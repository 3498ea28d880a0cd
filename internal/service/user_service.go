package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
)

// UserService defines the interface for reading user profiles.
// Профили создаются внешним auth-сервисом; здесь только чтение вместе
// с денормализованными счетчиками.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userServiceImpl struct {
	db         interfaces.DBTX
	userRepo   interfaces.UserRepository
	statsCache interfaces.StatsCache
	logger     *zap.Logger
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	db interfaces.DBTX,
	userRepo interfaces.UserRepository,
	statsCache interfaces.StatsCache,
	logger *zap.Logger,
) UserService {
	return &userServiceImpl{
		db:         db,
		userRepo:   userRepo,
		statsCache: statsCache,
		logger:     logger.Named("UserService"),
	}
}

// GetUser возвращает профиль пользователя. Счетчики читаются через
// Redis-кэш; промах или ошибка кэша деградируют в чтение из БД.
func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.statsCache != nil {
		if stats, err := s.statsCache.GetUserStats(ctx, id); err == nil {
			user, dbErr := s.userRepo.GetByID(ctx, s.db, id)
			if dbErr != nil {
				return nil, s.mapGetError(dbErr, id)
			}
			user.Stats = *stats
			return user, nil
		} else if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.logger.Warn("User stats cache read failed, falling back to DB", zap.String("userID", id.String()), zap.Error(err))
		}
	}

	user, err := s.userRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, s.mapGetError(err, id)
	}

	if s.statsCache != nil {
		if err := s.statsCache.SetUserStats(ctx, id, &user.Stats); err != nil {
			s.logger.Warn("Failed to populate user stats cache", zap.String("userID", id.String()), zap.Error(err))
		}
	}
	return user, nil
}

func (s *userServiceImpl) mapGetError(err error, id uuid.UUID) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrUserNotFound
	}
	s.logger.Error("Failed to get user", zap.String("userID", id.String()), zap.Error(err))
	return ErrInternal
}
