package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	interfaceMocks "bergerie-server/internal/interfaces/mocks"
	"bergerie-server/internal/models"
	"bergerie-server/internal/service"
)

func TestGetUser_CacheMissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := &models.User{
		ID:       id,
		Username: "berger_des_alpes",
		Stats:    models.UserStats{PostsCount: 5, LikesGivenCount: 12},
	}

	mockRepo := new(interfaceMocks.UserRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil).Once()

	statsCache := newFakeStatsCache()
	svc := service.NewUserService(nil, mockRepo, statsCache, zap.NewNop())

	user, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.Stats.PostsCount)

	// Кэш заполнен после промаха
	cached, err := statsCache.GetUserStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(5), cached.PostsCount)
	mockRepo.AssertExpectations(t)
}

func TestGetUser_CacheHitOverlaysStats(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := &models.User{
		ID:       id,
		Username: "berger_des_alpes",
		Stats:    models.UserStats{PostsCount: 5},
	}

	mockRepo := new(interfaceMocks.UserRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil).Once()

	statsCache := newFakeStatsCache()
	// В кэше более свежие счетчики, чем в строке БД
	statsCache.userStats[id] = models.UserStats{PostsCount: 6, FollowingCount: 2}

	svc := service.NewUserService(nil, mockRepo, statsCache, zap.NewNop())

	user, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(6), user.Stats.PostsCount)
	assert.Equal(t, int64(2), user.Stats.FollowingCount)
}

func TestGetUser_CacheFailureFallsBackToDB(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := &models.User{ID: id, Stats: models.UserStats{PostsCount: 3}}

	mockRepo := new(interfaceMocks.UserRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil).Once()

	statsCache := newFakeStatsCache()
	statsCache.getErr = errors.New("redis down")

	svc := service.NewUserService(nil, mockRepo, statsCache, zap.NewNop())

	user, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.Stats.PostsCount)
}

func TestGetUser_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	mockRepo := new(interfaceMocks.UserRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(nil, models.ErrNotFound).Once()

	svc := service.NewUserService(nil, mockRepo, newFakeStatsCache(), zap.NewNop())

	_, err := svc.GetUser(ctx, id)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
