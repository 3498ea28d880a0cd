package interfaces

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// ErrCacheMiss возвращается, когда значения нет в кэше.
var ErrCacheMiss = errors.New("cache miss")

// StatsCache кэширует денормализованные счетчики сущностей.
// Промах кэша не является ошибкой сервиса: читатель обязан сходить в БД
// и заполнить кэш. После любой мутации счетчика запись инвалидируется.
type StatsCache interface {
	GetBergerieStats(ctx context.Context, bergerieID uuid.UUID) (*models.BergerieStats, error)
	SetBergerieStats(ctx context.Context, bergerieID uuid.UUID, stats *models.BergerieStats) error
	InvalidateBergerie(ctx context.Context, bergerieID uuid.UUID) error

	GetPostStats(ctx context.Context, postID uuid.UUID) (*models.PostStats, error)
	SetPostStats(ctx context.Context, postID uuid.UUID, stats *models.PostStats) error
	InvalidatePost(ctx context.Context, postID uuid.UUID) error

	GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
	SetUserStats(ctx context.Context, userID uuid.UUID, stats *models.UserStats) error
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}
