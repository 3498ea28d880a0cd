package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	interfaceMocks "bergerie-server/internal/interfaces/mocks"
	"bergerie-server/internal/models"
	"bergerie-server/internal/service"
)

// fakeStatsCache держит статы в памяти и считает обращения.
type fakeStatsCache struct {
	mu            sync.Mutex
	bergerieStats map[uuid.UUID]models.BergerieStats
	postStats     map[uuid.UUID]models.PostStats
	userStats     map[uuid.UUID]models.UserStats
	getErr        error
	setCalls      int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{
		bergerieStats: make(map[uuid.UUID]models.BergerieStats),
		postStats:     make(map[uuid.UUID]models.PostStats),
		userStats:     make(map[uuid.UUID]models.UserStats),
	}
}

func (f *fakeStatsCache) GetBergerieStats(ctx context.Context, id uuid.UUID) (*models.BergerieStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	stats, ok := f.bergerieStats[id]
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	return &stats, nil
}

func (f *fakeStatsCache) SetBergerieStats(ctx context.Context, id uuid.UUID, stats *models.BergerieStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	f.bergerieStats[id] = *stats
	return nil
}

func (f *fakeStatsCache) InvalidateBergerie(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bergerieStats, id)
	return nil
}

func (f *fakeStatsCache) GetPostStats(ctx context.Context, id uuid.UUID) (*models.PostStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	stats, ok := f.postStats[id]
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	return &stats, nil
}

func (f *fakeStatsCache) SetPostStats(ctx context.Context, id uuid.UUID, stats *models.PostStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	f.postStats[id] = *stats
	return nil
}

func (f *fakeStatsCache) InvalidatePost(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.postStats, id)
	return nil
}

func (f *fakeStatsCache) GetUserStats(ctx context.Context, id uuid.UUID) (*models.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	stats, ok := f.userStats[id]
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	return &stats, nil
}

func (f *fakeStatsCache) SetUserStats(ctx context.Context, id uuid.UUID, stats *models.UserStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	f.userStats[id] = *stats
	return nil
}

func (f *fakeStatsCache) InvalidateUser(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.userStats, id)
	return nil
}

func TestGetBergerie_CacheMissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := &models.Bergerie{
		ID:      id,
		OwnerID: uuid.New(),
		Name:    "Ferme des Alpilles",
		Stats:   models.BergerieStats{LikesCount: 7, FollowersCount: 3},
	}

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil).Once()

	statsCache := newFakeStatsCache()
	svc := service.NewBergerieService(nil, mockRepo, statsCache, zap.NewNop())

	bergerie, err := svc.GetBergerie(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), bergerie.Stats.LikesCount)

	// Кэш заполнен после промаха
	cached, err := statsCache.GetBergerieStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cached.LikesCount)
	mockRepo.AssertExpectations(t)
}

func TestGetBergerie_CacheHitOverlaysStats(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := &models.Bergerie{
		ID:      id,
		OwnerID: uuid.New(),
		Name:    "Ferme des Alpilles",
		Stats:   models.BergerieStats{LikesCount: 7},
	}

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil).Once()

	statsCache := newFakeStatsCache()
	// В кэше более свежие счетчики, чем в строке БД
	statsCache.bergerieStats[id] = models.BergerieStats{LikesCount: 9, FollowersCount: 4}

	svc := service.NewBergerieService(nil, mockRepo, statsCache, zap.NewNop())

	bergerie, err := svc.GetBergerie(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(9), bergerie.Stats.LikesCount)
	assert.Equal(t, int64(4), bergerie.Stats.FollowersCount)
}

func TestGetBergerie_CacheFailureFallsBackToDB(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := &models.Bergerie{ID: id, OwnerID: uuid.New(), Stats: models.BergerieStats{LikesCount: 2}}

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil).Once()

	statsCache := newFakeStatsCache()
	statsCache.getErr = errors.New("redis down")

	svc := service.NewBergerieService(nil, mockRepo, statsCache, zap.NewNop())

	bergerie, err := svc.GetBergerie(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), bergerie.Stats.LikesCount)
}

func TestGetBergerie_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(nil, models.ErrNotFound).Once()

	svc := service.NewBergerieService(nil, mockRepo, newFakeStatsCache(), zap.NewNop())

	_, err := svc.GetBergerie(ctx, id)
	assert.ErrorIs(t, err, models.ErrBergerieNotFound)
}

func TestUpdateBergerie_OnlyOwner(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()
	id := uuid.New()
	stored := &models.Bergerie{ID: id, OwnerID: owner, Name: "Old"}

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil)

	svc := service.NewBergerieService(nil, mockRepo, nil, zap.NewNop())

	_, err := svc.UpdateBergerie(ctx, stranger, id, service.UpdateBergerieInput{})
	assert.ErrorIs(t, err, models.ErrForbidden)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateBergerie_PartialFields(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()
	stored := &models.Bergerie{ID: id, OwnerID: owner, Name: "Old", Region: "Provence"}

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil).Once()
	mockRepo.On("Update", ctx, mock.Anything, mock.MatchedBy(func(b *models.Bergerie) bool {
		return b.Name == "New" && b.Region == "Provence"
	})).Return(nil).Once()

	svc := service.NewBergerieService(nil, mockRepo, nil, zap.NewNop())

	name := "New"
	updated, err := svc.UpdateBergerie(ctx, owner, id, service.UpdateBergerieInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "Provence", updated.Region)
	mockRepo.AssertExpectations(t)
}

func TestSearchBergeries(t *testing.T) {
	ctx := context.Background()
	found := []*models.Bergerie{
		{ID: uuid.New(), Name: "Bergerie du Larzac"},
		{ID: uuid.New(), Name: "La Petite Bergerie"},
	}

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("Search", ctx, mock.Anything, "bergerie", "", 20).
		Return(found, "next-cursor", nil).Once()

	svc := service.NewBergerieService(nil, mockRepo, nil, zap.NewNop())

	bergeries, nextCursor, err := svc.SearchBergeries(ctx, "bergerie", "", 20)
	require.NoError(t, err)
	assert.Len(t, bergeries, 2)
	assert.Equal(t, "next-cursor", nextCursor)
	mockRepo.AssertExpectations(t)
}

func TestSearchBergeries_InvalidCursor(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("Search", ctx, mock.Anything, "bergerie", "garbage", 20).
		Return(nil, "", interfaces.ErrInvalidCursor).Once()

	svc := service.NewBergerieService(nil, mockRepo, nil, zap.NewNop())

	_, _, err := svc.SearchBergeries(ctx, "bergerie", "garbage", 20)
	assert.ErrorIs(t, err, interfaces.ErrInvalidCursor)
}

func TestDeleteBergerie_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	id := uuid.New()
	stored := &models.Bergerie{ID: id, OwnerID: owner}

	mockRepo := new(interfaceMocks.BergerieRepository)
	mockRepo.On("GetByID", ctx, mock.Anything, id).Return(stored, nil).Once()
	mockRepo.On("Delete", ctx, mock.Anything, id, owner).Return(nil).Once()

	statsCache := newFakeStatsCache()
	statsCache.bergerieStats[id] = models.BergerieStats{LikesCount: 5}

	svc := service.NewBergerieService(nil, mockRepo, statsCache, zap.NewNop())

	require.NoError(t, svc.DeleteBergerie(ctx, owner, id))

	_, err := statsCache.GetBergerieStats(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
	mockRepo.AssertExpectations(t)
}
