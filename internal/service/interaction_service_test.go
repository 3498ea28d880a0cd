package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	interfaceMocks "bergerie-server/internal/interfaces/mocks"
	"bergerie-server/internal/messaging"
	messagingMocks "bergerie-server/internal/messaging/mocks"
	"bergerie-server/internal/models"
	"bergerie-server/internal/service"
)

// --- In-memory membership store fake ---

type likeKey struct {
	userID     uuid.UUID
	targetID   uuid.UUID
	targetType models.TargetType
}

type followKey struct {
	userID     uuid.UUID
	bergerieID uuid.UUID
}

// memStore эмулирует membership-хранилище со счетчиками. Мьютекс
// сериализует "транзакции", как это делает БД.
type memStore struct {
	mu        sync.Mutex
	likes     map[likeKey]time.Time
	follows   map[followKey]time.Time
	bergeries map[uuid.UUID]*models.Bergerie
	posts     map[uuid.UUID]*models.Post
	users     map[uuid.UUID]*models.UserStats
}

func newMemStore() *memStore {
	return &memStore{
		likes:     make(map[likeKey]time.Time),
		follows:   make(map[followKey]time.Time),
		bergeries: make(map[uuid.UUID]*models.Bergerie),
		posts:     make(map[uuid.UUID]*models.Post),
		users:     make(map[uuid.UUID]*models.UserStats),
	}
}

func (s *memStore) addUser(id uuid.UUID) {
	s.users[id] = &models.UserStats{}
}

func (s *memStore) addBergerie(ownerID uuid.UUID, likes, followers int64) *models.Bergerie {
	b := &models.Bergerie{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    "La Bergerie du Test",
		Stats:   models.BergerieStats{LikesCount: likes, FollowersCount: followers},
	}
	s.bergeries[b.ID] = b
	return b
}

func (s *memStore) addPost(bergerieID, authorID uuid.UUID) *models.Post {
	p := &models.Post{ID: uuid.New(), BergerieID: bergerieID, AuthorID: authorID}
	s.posts[p.ID] = p
	return p
}

// WithTransaction сериализует fn; откат не эмулируем, тесты не должны
// провоцировать частичные ошибки внутри транзакции.
func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, nil)
}

type memLikeRepo struct{ s *memStore }

func (r *memLikeRepo) InsertIfAbsent(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	k := likeKey{userID, targetID, targetType}
	if _, ok := r.s.likes[k]; ok {
		return false, nil
	}
	r.s.likes[k] = time.Now()
	return true, nil
}

func (r *memLikeRepo) DeleteIfPresent(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	k := likeKey{userID, targetID, targetType}
	if _, ok := r.s.likes[k]; !ok {
		return false, nil
	}
	delete(r.s.likes, k)
	return true, nil
}

func (r *memLikeRepo) Exists(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.likes[likeKey{userID, targetID, targetType}]
	return ok, nil
}

func (r *memLikeRepo) CountForTarget(ctx context.Context, q interfaces.DBTX, targetID uuid.UUID, targetType models.TargetType) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k := range r.s.likes {
		if k.targetID == targetID && k.targetType == targetType {
			n++
		}
	}
	return n, nil
}

func (r *memLikeRepo) ListByUser(ctx context.Context, q interfaces.DBTX, userID uuid.UUID, targetType *models.TargetType, cursor string, limit int) ([]models.Like, string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var likes []models.Like
	for k, at := range r.s.likes {
		if k.userID != userID {
			continue
		}
		if targetType != nil && k.targetType != *targetType {
			continue
		}
		likes = append(likes, models.Like{UserID: k.userID, TargetID: k.targetID, TargetType: k.targetType, CreatedAt: at})
	}
	return likes, "", nil
}

type memFollowRepo struct{ s *memStore }

func (r *memFollowRepo) InsertIfAbsent(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	k := followKey{userID, bergerieID}
	if _, ok := r.s.follows[k]; ok {
		return false, nil
	}
	r.s.follows[k] = time.Now()
	return true, nil
}

func (r *memFollowRepo) DeleteIfPresent(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	k := followKey{userID, bergerieID}
	if _, ok := r.s.follows[k]; !ok {
		return false, nil
	}
	delete(r.s.follows, k)
	return true, nil
}

func (r *memFollowRepo) Exists(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.follows[followKey{userID, bergerieID}]
	return ok, nil
}

func (r *memFollowRepo) ListFollowedBergeries(ctx context.Context, q interfaces.DBTX, userID uuid.UUID, cursor string, limit int) ([]models.FollowedBergerie, string, error) {
	return nil, "", nil
}

func (r *memFollowRepo) ListFollowers(ctx context.Context, q interfaces.DBTX, bergerieID uuid.UUID, cursor string, limit int) ([]models.BergerieFollower, string, error) {
	return nil, "", nil
}

func (r *memFollowRepo) ListFollowedBergerieIDs(ctx context.Context, q interfaces.DBTX, userID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for k := range r.s.follows {
		if k.userID == userID {
			ids = append(ids, k.bergerieID)
		}
	}
	return ids, nil
}

func (r *memFollowRepo) ListFollowerIDs(ctx context.Context, q interfaces.DBTX, bergerieID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for k := range r.s.follows {
		if k.bergerieID == bergerieID {
			ids = append(ids, k.userID)
		}
	}
	return ids, nil
}

type memBergerieRepo struct{ s *memStore }

func (r *memBergerieRepo) Create(ctx context.Context, q interfaces.DBTX, b *models.Bergerie) error {
	r.s.bergeries[b.ID] = b
	return nil
}

func (r *memBergerieRepo) GetByID(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Bergerie, error) {
	b, ok := r.s.bergeries[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memBergerieRepo) Update(ctx context.Context, q interfaces.DBTX, b *models.Bergerie) error {
	return nil
}

func (r *memBergerieRepo) Delete(ctx context.Context, q interfaces.DBTX, id, ownerID uuid.UUID) error {
	delete(r.s.bergeries, id)
	return nil
}

func (r *memBergerieRepo) List(ctx context.Context, q interfaces.DBTX, cursor string, limit int) ([]*models.Bergerie, string, error) {
	return nil, "", nil
}

func (r *memBergerieRepo) ListByIDs(ctx context.Context, q interfaces.DBTX, ids []uuid.UUID) ([]*models.Bergerie, error) {
	return nil, nil
}

func (r *memBergerieRepo) Search(ctx context.Context, q interfaces.DBTX, term, cursor string, limit int) ([]*models.Bergerie, string, error) {
	return nil, "", nil
}

func (r *memBergerieRepo) counter(id uuid.UUID) (*models.Bergerie, error) {
	b, ok := r.s.bergeries[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return b, nil
}

func (r *memBergerieRepo) IncrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	b, err := r.counter(id)
	if err != nil {
		return err
	}
	b.Stats.LikesCount++
	return nil
}

func (r *memBergerieRepo) DecrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	b, err := r.counter(id)
	if err != nil {
		return err
	}
	if b.Stats.LikesCount > 0 {
		b.Stats.LikesCount--
	}
	return nil
}

func (r *memBergerieRepo) IncrementFollowersCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	b, err := r.counter(id)
	if err != nil {
		return err
	}
	b.Stats.FollowersCount++
	return nil
}

func (r *memBergerieRepo) DecrementFollowersCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	b, err := r.counter(id)
	if err != nil {
		return err
	}
	if b.Stats.FollowersCount > 0 {
		b.Stats.FollowersCount--
	}
	return nil
}

func (r *memBergerieRepo) IncrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	b, err := r.counter(id)
	if err != nil {
		return err
	}
	b.Stats.PostsCount++
	return nil
}

func (r *memBergerieRepo) DecrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	b, err := r.counter(id)
	if err != nil {
		return err
	}
	if b.Stats.PostsCount > 0 {
		b.Stats.PostsCount--
	}
	return nil
}

type memPostRepo struct {
	interfaceMocks.PostRepository // неиспользуемые методы паникуют, и это желаемо
	s                             *memStore
}

func (r *memPostRepo) GetByID(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Post, error) {
	p, ok := r.s.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *memPostRepo) IncrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	p, ok := r.s.posts[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Stats.LikesCount++
	return nil
}

func (r *memPostRepo) DecrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	p, ok := r.s.posts[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.Stats.LikesCount > 0 {
		p.Stats.LikesCount--
	}
	return nil
}

type memUserRepo struct {
	interfaceMocks.UserRepository
	s *memStore
}

func (r *memUserRepo) stats(id uuid.UUID) (*models.UserStats, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) IncrementFollowingCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	u, err := r.stats(id)
	if err != nil {
		return err
	}
	u.FollowingCount++
	return nil
}

func (r *memUserRepo) DecrementFollowingCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	u, err := r.stats(id)
	if err != nil {
		return err
	}
	if u.FollowingCount > 0 {
		u.FollowingCount--
	}
	return nil
}

func (r *memUserRepo) IncrementLikesGivenCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	u, err := r.stats(id)
	if err != nil {
		return err
	}
	u.LikesGivenCount++
	return nil
}

func (r *memUserRepo) DecrementLikesGivenCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	u, err := r.stats(id)
	if err != nil {
		return err
	}
	if u.LikesGivenCount > 0 {
		u.LikesGivenCount--
	}
	return nil
}

// chanPublisher записывает опубликованные события в канал.
type chanPublisher struct {
	events chan messaging.NotificationEventPayload
}

func newChanPublisher() *chanPublisher {
	return &chanPublisher{events: make(chan messaging.NotificationEventPayload, 8)}
}

func (p *chanPublisher) PublishNotificationEvent(ctx context.Context, payload messaging.NotificationEventPayload) error {
	p.events <- payload
	return nil
}

func newMemInteractionService(store *memStore, pub messaging.NotificationEventPublisher) service.InteractionService {
	return service.NewInteractionService(
		nil, // DBTX не используется фейками
		store,
		&memLikeRepo{s: store},
		&memFollowRepo{s: store},
		&memBergerieRepo{s: store},
		&memPostRepo{s: store},
		&memUserRepo{s: store},
		nil, // без кэша
		pub,
		zap.NewNop(),
	)
}

// --- Tests ---

func TestToggleLike_PairingRestoresState(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	actor := uuid.New()
	store.addUser(owner)
	store.addUser(actor)
	bergerie := store.addBergerie(owner, 0, 0)

	svc := newMemInteractionService(store, nil)

	liked, err := svc.ToggleLike(ctx, actor, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), store.bergeries[bergerie.ID].Stats.LikesCount)
	assert.Equal(t, int64(1), store.users[actor].LikesGivenCount)

	isLiked, err := svc.IsLiked(ctx, actor, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	assert.True(t, isLiked)

	liked, err = svc.ToggleLike(ctx, actor, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), store.bergeries[bergerie.ID].Stats.LikesCount)
	assert.Equal(t, int64(0), store.users[actor].LikesGivenCount)
}

func TestToggleLike_TwoActorsCountTwice(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	actorA := uuid.New()
	actorB := uuid.New()
	store.addUser(owner)
	store.addUser(actorA)
	store.addUser(actorB)
	bergerie := store.addBergerie(owner, 0, 0)

	svc := newMemInteractionService(store, nil)

	_, err := svc.ToggleLike(ctx, actorA, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, actorB, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.bergeries[bergerie.ID].Stats.LikesCount)
}

func TestToggleLike_PostTarget(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	actor := uuid.New()
	store.addUser(owner)
	store.addUser(actor)
	bergerie := store.addBergerie(owner, 0, 0)
	post := store.addPost(bergerie.ID, owner)

	svc := newMemInteractionService(store, nil)

	liked, err := svc.ToggleLike(ctx, actor, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), store.posts[post.ID].Stats.LikesCount)

	liked, err = svc.ToggleLike(ctx, actor, post.ID, models.TargetTypePost)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), store.posts[post.ID].Stats.LikesCount)
}

func TestToggleLike_MissingTarget(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	actor := uuid.New()
	store.addUser(actor)

	svc := newMemInteractionService(store, nil)

	_, err := svc.ToggleLike(ctx, actor, uuid.New(), models.TargetTypeBergerie)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestToggleLike_InvalidTargetType(t *testing.T) {
	ctx := context.Background()
	svc := newMemInteractionService(newMemStore(), nil)

	_, err := svc.ToggleLike(ctx, uuid.New(), uuid.New(), models.TargetType("user"))
	assert.ErrorIs(t, err, service.ErrInvalidTargetType)
}

// Параллельный toggle уже вставил строку: условная запись не сработала,
// счетчики не трогаем, возвращаем желаемое состояние.
func TestToggleLike_BenignInsertRace(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()
	bergerieID := uuid.New()

	mockLikeRepo := new(interfaceMocks.LikeRepository)
	mockFollowRepo := new(interfaceMocks.FollowRepository)
	mockBergerieRepo := new(interfaceMocks.BergerieRepository)
	mockPostRepo := new(interfaceMocks.PostRepository)
	mockUserRepo := new(interfaceMocks.UserRepository)

	mockBergerieRepo.On("GetByID", ctx, mock.Anything, bergerieID).
		Return(&models.Bergerie{ID: bergerieID, OwnerID: uuid.New()}, nil).Once()
	mockLikeRepo.On("Exists", ctx, mock.Anything, actor, bergerieID, models.TargetTypeBergerie).
		Return(false, nil).Once()
	// Гонка: к моменту записи строка уже есть
	mockLikeRepo.On("InsertIfAbsent", mock.Anything, mock.Anything, actor, bergerieID, models.TargetTypeBergerie).
		Return(false, nil).Once()

	svc := service.NewInteractionService(
		nil, passthroughTx{}, mockLikeRepo, mockFollowRepo,
		mockBergerieRepo, mockPostRepo, mockUserRepo, nil, nil, zap.NewNop(),
	)

	liked, err := svc.ToggleLike(ctx, actor, bergerieID, models.TargetTypeBergerie)
	require.NoError(t, err)
	assert.True(t, liked)

	// Ни одного вызова инкремента
	mockBergerieRepo.AssertNotCalled(t, "IncrementLikesCount", mock.Anything, mock.Anything, mock.Anything)
	mockUserRepo.AssertNotCalled(t, "IncrementLikesGivenCount", mock.Anything, mock.Anything, mock.Anything)
	mockLikeRepo.AssertExpectations(t)
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.DBTX) error) error {
	return fn(ctx, nil)
}

// Сценарий из UI: 10 лайков / 2 подписчика -> оба toggle -> 11/3 -> оба
// toggle обратно -> 10/2.
func TestToggleScenario_LikeAndFollowRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	actor := uuid.New()
	store.addUser(owner)
	store.addUser(actor)
	bergerie := store.addBergerie(owner, 10, 2)

	svc := newMemInteractionService(store, nil)

	liked, err := svc.ToggleLike(ctx, actor, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	following, err := svc.ToggleFollow(ctx, actor, bergerie.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, following)
	assert.Equal(t, int64(11), store.bergeries[bergerie.ID].Stats.LikesCount)
	assert.Equal(t, int64(3), store.bergeries[bergerie.ID].Stats.FollowersCount)
	assert.Equal(t, int64(1), store.users[actor].FollowingCount)

	liked, err = svc.ToggleLike(ctx, actor, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	following, err = svc.ToggleFollow(ctx, actor, bergerie.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, following)
	assert.Equal(t, int64(10), store.bergeries[bergerie.ID].Stats.LikesCount)
	assert.Equal(t, int64(2), store.bergeries[bergerie.ID].Stats.FollowersCount)
	assert.Equal(t, int64(0), store.users[actor].FollowingCount)
}

func TestToggleFollow_MissingBergerie(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	actor := uuid.New()
	store.addUser(actor)

	svc := newMemInteractionService(store, nil)

	_, err := svc.ToggleFollow(ctx, actor, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestToggleFollow_PublishesNotification(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	actor := uuid.New()
	store.addUser(owner)
	store.addUser(actor)
	bergerie := store.addBergerie(owner, 0, 0)

	pub := newChanPublisher()
	svc := newMemInteractionService(store, pub)

	_, err := svc.ToggleFollow(ctx, actor, bergerie.ID)
	require.NoError(t, err)

	select {
	case event := <-pub.events:
		assert.Equal(t, owner, event.RecipientID)
		assert.Equal(t, actor, event.SenderID)
		assert.Equal(t, models.NotificationTypeFollow, event.Type)
		assert.Equal(t, bergerie.ID, event.RefID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification event to be published")
	}

	// Unfollow не публикует ничего
	_, err = svc.ToggleFollow(ctx, actor, bergerie.ID)
	require.NoError(t, err)
	select {
	case event := <-pub.events:
		t.Fatalf("unexpected event published on unfollow: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestToggleLike_SelfNotificationSkipped(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	store.addUser(owner)
	bergerie := store.addBergerie(owner, 0, 0)

	pub := newChanPublisher()
	svc := newMemInteractionService(store, pub)

	// Владелец лайкает собственную бержери
	liked, err := svc.ToggleLike(ctx, owner, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	assert.True(t, liked)

	select {
	case event := <-pub.events:
		t.Fatalf("self-notification should be skipped, got %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

// Счетчик на нуле при существующей строке (дрейф): декремент не уводит в минус.
func TestToggleLike_DecrementClampsAtZero(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	actor := uuid.New()
	store.addUser(owner)
	store.addUser(actor)
	bergerie := store.addBergerie(owner, 0, 0)
	store.likes[likeKey{actor, bergerie.ID, models.TargetTypeBergerie}] = time.Now()

	svc := newMemInteractionService(store, nil)

	liked, err := svc.ToggleLike(ctx, actor, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), store.bergeries[bergerie.ID].Stats.LikesCount)
}

func TestGetInteractionStatus(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	actor := uuid.New()
	store.addUser(owner)
	store.addUser(actor)
	bergerie := store.addBergerie(owner, 0, 0)

	svc := newMemInteractionService(store, nil)

	status, err := svc.GetInteractionStatus(ctx, actor, bergerie.ID)
	require.NoError(t, err)
	assert.False(t, status.IsLiked)
	assert.False(t, status.IsFollowing)

	_, err = svc.ToggleLike(ctx, actor, bergerie.ID, models.TargetTypeBergerie)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, actor, bergerie.ID)
	require.NoError(t, err)

	status, err = svc.GetInteractionStatus(ctx, actor, bergerie.ID)
	require.NoError(t, err)
	assert.True(t, status.IsLiked)
	assert.True(t, status.IsFollowing)
}

// Мок паблишера из messaging/mocks тоже поддерживается сервисом.
func TestToggleFollow_MockPublisherContract(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := uuid.New()
	actor := uuid.New()
	store.addUser(owner)
	store.addUser(actor)
	bergerie := store.addBergerie(owner, 0, 0)

	mockPub := new(messagingMocks.NotificationEventPublisher)
	done := make(chan struct{})
	mockPub.On("PublishNotificationEvent", mock.Anything, mock.MatchedBy(func(p messaging.NotificationEventPayload) bool {
		return p.RecipientID == owner && p.Type == models.NotificationTypeFollow
	})).Run(func(args mock.Arguments) { close(done) }).Return(nil).Once()

	svc := newMemInteractionService(store, mockPub)

	_, err := svc.ToggleFollow(ctx, actor, bergerie.ID)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher was not called")
	}
	mockPub.AssertExpectations(t)
}
