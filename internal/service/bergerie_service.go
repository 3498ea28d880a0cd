package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
)

// UpdateBergerieInput перечисляет изменяемые поля бержери. Nil-поле не трогаем.
type UpdateBergerieInput struct {
	Name        *string
	Description *string
	Region      *string
	CoverURL    *string
}

// BergerieService defines the interface for managing bergeries.
type BergerieService interface {
	CreateBergerie(ctx context.Context, ownerID uuid.UUID, name, description, region, coverURL string) (*models.Bergerie, error)
	GetBergerie(ctx context.Context, id uuid.UUID) (*models.Bergerie, error)
	UpdateBergerie(ctx context.Context, actorID, id uuid.UUID, input UpdateBergerieInput) (*models.Bergerie, error)
	DeleteBergerie(ctx context.Context, actorID, id uuid.UUID) error
	ListBergeries(ctx context.Context, cursor string, limit int) ([]*models.Bergerie, string, error)
	SearchBergeries(ctx context.Context, term, cursor string, limit int) ([]*models.Bergerie, string, error)
}

type bergerieServiceImpl struct {
	db           interfaces.DBTX
	bergerieRepo interfaces.BergerieRepository
	statsCache   interfaces.StatsCache
	logger       *zap.Logger
}

// NewBergerieService creates a new instance of BergerieService.
func NewBergerieService(
	db interfaces.DBTX,
	bergerieRepo interfaces.BergerieRepository,
	statsCache interfaces.StatsCache,
	logger *zap.Logger,
) BergerieService {
	return &bergerieServiceImpl{
		db:           db,
		bergerieRepo: bergerieRepo,
		statsCache:   statsCache,
		logger:       logger.Named("BergerieService"),
	}
}

// CreateBergerie создает новую бержери с нулевыми счетчиками.
func (s *bergerieServiceImpl) CreateBergerie(ctx context.Context, ownerID uuid.UUID, name, description, region, coverURL string) (*models.Bergerie, error) {
	bergerie := &models.Bergerie{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Region:      region,
		CoverURL:    coverURL,
	}
	if err := s.bergerieRepo.Create(ctx, s.db, bergerie); err != nil {
		s.logger.Error("Failed to create bergerie", zap.String("ownerID", ownerID.String()), zap.Error(err))
		return nil, ErrInternal
	}
	return bergerie, nil
}

// GetBergerie возвращает бержери. Счетчики читаются через Redis-кэш;
// промах или ошибка кэша деградируют в чтение из БД.
func (s *bergerieServiceImpl) GetBergerie(ctx context.Context, id uuid.UUID) (*models.Bergerie, error) {
	if s.statsCache != nil {
		if stats, err := s.statsCache.GetBergerieStats(ctx, id); err == nil {
			bergerie, dbErr := s.bergerieRepo.GetByID(ctx, s.db, id)
			if dbErr != nil {
				return nil, s.mapGetError(dbErr, id)
			}
			bergerie.Stats = *stats
			return bergerie, nil
		} else if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.logger.Warn("Stats cache read failed, falling back to DB", zap.String("bergerieID", id.String()), zap.Error(err))
		}
	}

	bergerie, err := s.bergerieRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, s.mapGetError(err, id)
	}

	if s.statsCache != nil {
		if err := s.statsCache.SetBergerieStats(ctx, id, &bergerie.Stats); err != nil {
			s.logger.Warn("Failed to populate stats cache", zap.String("bergerieID", id.String()), zap.Error(err))
		}
	}
	return bergerie, nil
}

func (s *bergerieServiceImpl) mapGetError(err error, id uuid.UUID) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.ErrBergerieNotFound
	}
	s.logger.Error("Failed to get bergerie", zap.String("bergerieID", id.String()), zap.Error(err))
	return ErrInternal
}

// UpdateBergerie обновляет поля бержери. Разрешено только владельцу.
func (s *bergerieServiceImpl) UpdateBergerie(ctx context.Context, actorID, id uuid.UUID, input UpdateBergerieInput) (*models.Bergerie, error) {
	bergerie, err := s.bergerieRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, s.mapGetError(err, id)
	}
	if bergerie.OwnerID != actorID {
		s.logger.Warn("Non-owner attempted bergerie update",
			zap.String("actorID", actorID.String()),
			zap.String("bergerieID", id.String()))
		return nil, models.ErrForbidden
	}

	if input.Name != nil {
		bergerie.Name = *input.Name
	}
	if input.Description != nil {
		bergerie.Description = *input.Description
	}
	if input.Region != nil {
		bergerie.Region = *input.Region
	}
	if input.CoverURL != nil {
		bergerie.CoverURL = *input.CoverURL
	}

	if err := s.bergerieRepo.Update(ctx, s.db, bergerie); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrBergerieNotFound
		}
		s.logger.Error("Failed to update bergerie", zap.String("bergerieID", id.String()), zap.Error(err))
		return nil, ErrInternal
	}
	return bergerie, nil
}

// DeleteBergerie удаляет бержери владельца. Membership-строки и посты
// каскадятся на уровне схемы.
func (s *bergerieServiceImpl) DeleteBergerie(ctx context.Context, actorID, id uuid.UUID) error {
	bergerie, err := s.bergerieRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return s.mapGetError(err, id)
	}
	if bergerie.OwnerID != actorID {
		return models.ErrForbidden
	}

	if err := s.bergerieRepo.Delete(ctx, s.db, id, actorID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrBergerieNotFound
		}
		s.logger.Error("Failed to delete bergerie", zap.String("bergerieID", id.String()), zap.Error(err))
		return ErrInternal
	}

	if s.statsCache != nil {
		if err := s.statsCache.InvalidateBergerie(ctx, id); err != nil {
			s.logger.Warn("Failed to invalidate deleted bergerie stats", zap.String("bergerieID", id.String()), zap.Error(err))
		}
	}
	return nil
}

// ListBergeries возвращает бержери с курсорной пагинацией.
func (s *bergerieServiceImpl) ListBergeries(ctx context.Context, cursor string, limit int) ([]*models.Bergerie, string, error) {
	limit = clampLimit(limit)

	bergeries, nextCursor, err := s.bergerieRepo.List(ctx, s.db, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to list bergeries", zap.Error(err))
		return nil, "", fmt.Errorf("failed to list bergeries: %w", ErrInternal)
	}
	return bergeries, nextCursor, nil
}

// SearchBergeries ищет бержери по имени с курсорной пагинацией.
func (s *bergerieServiceImpl) SearchBergeries(ctx context.Context, term, cursor string, limit int) ([]*models.Bergerie, string, error) {
	limit = clampLimit(limit)

	bergeries, nextCursor, err := s.bergerieRepo.Search(ctx, s.db, term, cursor, limit)
	if err != nil {
		if errors.Is(err, interfaces.ErrInvalidCursor) {
			return nil, "", err
		}
		s.logger.Error("Failed to search bergeries", zap.String("term", term), zap.Error(err))
		return nil, "", ErrInternal
	}
	return bergeries, nextCursor, nil
}
