package interactionview_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bergerie-server/internal/models"
	"bergerie-server/pkg/interactionview"
)

// fakeClient возвращает заранее заданные ответы и считает вызовы toggle.
type fakeClient struct {
	mu sync.Mutex

	liked     bool
	following bool

	likedErr     error
	followingErr error

	toggleLikeResult   bool
	toggleLikeErr      error
	toggleFollowResult bool
	toggleFollowErr    error

	toggleLikeCalls   int
	toggleFollowCalls int

	// блокирует toggle до закрытия, чтобы проверять busy-защиту
	toggleGate chan struct{}
}

func (f *fakeClient) IsLiked(ctx context.Context, actorID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	return f.liked, f.likedErr
}

func (f *fakeClient) IsFollowing(ctx context.Context, actorID, bergerieID uuid.UUID) (bool, error) {
	return f.following, f.followingErr
}

func (f *fakeClient) ToggleLike(ctx context.Context, actorID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	f.mu.Lock()
	f.toggleLikeCalls++
	gate := f.toggleGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.toggleLikeResult, f.toggleLikeErr
}

func (f *fakeClient) ToggleFollow(ctx context.Context, actorID, bergerieID uuid.UUID) (bool, error) {
	f.mu.Lock()
	f.toggleFollowCalls++
	f.mu.Unlock()
	return f.toggleFollowResult, f.toggleFollowErr
}

func intPtr(n int) *int { return &n }

func newLoadedBergerieView(t *testing.T, client *fakeClient, likes, followers int) *interactionview.View {
	t.Helper()
	v := interactionview.New(client, uuid.New(), models.TargetTypeBergerie)
	require.NoError(t, v.Load(context.Background(), uuid.New()))
	v.UpdateCounts(intPtr(likes), intPtr(followers))
	return v
}

func TestView_LoadResolvesFlags(t *testing.T) {
	client := &fakeClient{liked: true, following: true}
	v := interactionview.New(client, uuid.New(), models.TargetTypeBergerie)

	assert.True(t, v.State().Loading)

	require.NoError(t, v.Load(context.Background(), uuid.New()))

	state := v.State()
	assert.False(t, state.Loading)
	assert.True(t, state.IsLiked)
	assert.True(t, state.IsFollowing)
}

func TestView_LoadWithoutActor(t *testing.T) {
	client := &fakeClient{liked: true, following: true}
	v := interactionview.New(client, uuid.New(), models.TargetTypeBergerie)

	// Анонимный зритель: флаги опущены, загрузка завершена
	require.NoError(t, v.Load(context.Background(), uuid.Nil))

	state := v.State()
	assert.False(t, state.Loading)
	assert.False(t, state.IsLiked)
	assert.False(t, state.IsFollowing)
}

func TestView_LoadErrorClearsLoadingOnly(t *testing.T) {
	client := &fakeClient{likedErr: errors.New("store down")}
	v := interactionview.New(client, uuid.New(), models.TargetTypeBergerie)

	err := v.Load(context.Background(), uuid.New())
	require.Error(t, err)

	state := v.State()
	assert.False(t, state.Loading)
	assert.False(t, state.IsLiked)
	assert.False(t, state.IsFollowing)
}

func TestView_HandleLikeOptimisticDelta(t *testing.T) {
	client := &fakeClient{toggleLikeResult: true}
	v := newLoadedBergerieView(t, client, 10, 2)

	require.NoError(t, v.HandleLike(context.Background()))

	state := v.State()
	assert.True(t, state.IsLiked)
	assert.Equal(t, 11, state.LikesCount)
	assert.False(t, state.LikeBusy)

	client.toggleLikeResult = false
	require.NoError(t, v.HandleLike(context.Background()))

	state = v.State()
	assert.False(t, state.IsLiked)
	assert.Equal(t, 10, state.LikesCount)
}

func TestView_HandleLikeFailureLeavesStateUnchanged(t *testing.T) {
	client := &fakeClient{toggleLikeErr: errors.New("tx failed")}
	v := newLoadedBergerieView(t, client, 10, 2)

	err := v.HandleLike(context.Background())
	require.Error(t, err)

	state := v.State()
	assert.False(t, state.IsLiked)
	assert.Equal(t, 10, state.LikesCount)
	assert.False(t, state.LikeBusy)
}

func TestView_HandleLikeDoubleSubmitDropped(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{toggleLikeResult: true, toggleGate: gate}
	v := newLoadedBergerieView(t, client, 0, 0)

	done := make(chan error, 1)
	go func() { done <- v.HandleLike(context.Background()) }()

	// Дожидаемся, пока первый вызов дойдет до клиента и выставит busy
	for {
		client.mu.Lock()
		started := client.toggleLikeCalls == 1
		client.mu.Unlock()
		if started {
			break
		}
	}

	// Второй тап во время busy - no-op без обращения к клиенту
	require.NoError(t, v.HandleLike(context.Background()))
	client.mu.Lock()
	assert.Equal(t, 1, client.toggleLikeCalls)
	client.mu.Unlock()

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, v.State().LikesCount)
}

func TestView_HandleLikeAfterCloseDropped(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{toggleLikeResult: true, toggleGate: gate}
	v := newLoadedBergerieView(t, client, 5, 0)

	done := make(chan error, 1)
	go func() { done <- v.HandleLike(context.Background()) }()

	for {
		client.mu.Lock()
		started := client.toggleLikeCalls == 1
		client.mu.Unlock()
		if started {
			break
		}
	}

	// Закрываем view, пока toggle в полете
	v.Close()
	close(gate)
	require.NoError(t, <-done)

	// Поздний ответ отброшен, счетчик не изменился
	state := v.State()
	assert.Equal(t, 5, state.LikesCount)
	assert.False(t, state.IsLiked)
}

func TestView_HandleFollowNoOpOnPostView(t *testing.T) {
	client := &fakeClient{toggleFollowResult: true}
	v := interactionview.New(client, uuid.New(), models.TargetTypePost)
	require.NoError(t, v.Load(context.Background(), uuid.New()))

	require.NoError(t, v.HandleFollow(context.Background()))

	client.mu.Lock()
	assert.Equal(t, 0, client.toggleFollowCalls)
	client.mu.Unlock()
	assert.False(t, v.State().IsFollowing)
}

func TestView_HandleLikeWithoutActorNoOp(t *testing.T) {
	client := &fakeClient{toggleLikeResult: true}
	v := interactionview.New(client, uuid.New(), models.TargetTypeBergerie)
	require.NoError(t, v.Load(context.Background(), uuid.Nil))

	require.NoError(t, v.HandleLike(context.Background()))

	client.mu.Lock()
	assert.Equal(t, 0, client.toggleLikeCalls)
	client.mu.Unlock()
}

func TestView_UpdateCountsPartial(t *testing.T) {
	client := &fakeClient{}
	v := newLoadedBergerieView(t, client, 10, 2)

	v.UpdateCounts(intPtr(42), nil)
	state := v.State()
	assert.Equal(t, 42, state.LikesCount)
	assert.Equal(t, 2, state.FollowersCount)

	v.UpdateCounts(nil, intPtr(7))
	state = v.State()
	assert.Equal(t, 42, state.LikesCount)
	assert.Equal(t, 7, state.FollowersCount)
}

// Полный сценарий: 10 лайков / 2 подписчика, оба toggle и обратно.
func TestView_LikeAndFollowRoundTrip(t *testing.T) {
	client := &fakeClient{toggleLikeResult: true, toggleFollowResult: true}
	v := newLoadedBergerieView(t, client, 10, 2)

	require.NoError(t, v.HandleLike(context.Background()))
	require.NoError(t, v.HandleFollow(context.Background()))

	state := v.State()
	assert.True(t, state.IsLiked)
	assert.True(t, state.IsFollowing)
	assert.Equal(t, 11, state.LikesCount)
	assert.Equal(t, 3, state.FollowersCount)

	client.toggleLikeResult = false
	client.toggleFollowResult = false

	require.NoError(t, v.HandleLike(context.Background()))
	require.NoError(t, v.HandleFollow(context.Background()))

	state = v.State()
	assert.False(t, state.IsLiked)
	assert.False(t, state.IsFollowing)
	assert.Equal(t, 10, state.LikesCount)
	assert.Equal(t, 2, state.FollowersCount)
}

func TestView_UnlikeAtZeroCountClamps(t *testing.T) {
	// Дрейф: сервер считает лайк активным, счетчик на нуле
	client := &fakeClient{liked: true, toggleLikeResult: false}
	v := interactionview.New(client, uuid.New(), models.TargetTypeBergerie)
	require.NoError(t, v.Load(context.Background(), uuid.New()))

	require.NoError(t, v.HandleLike(context.Background()))

	state := v.State()
	assert.False(t, state.IsLiked)
	assert.Equal(t, 0, state.LikesCount)
}

func TestView_ResetKeepsActor(t *testing.T) {
	client := &fakeClient{toggleLikeResult: true}
	v := newLoadedBergerieView(t, client, 10, 2)

	v.Reset()
	state := v.State()
	assert.True(t, state.Loading)
	assert.Equal(t, 0, state.LikesCount)
	assert.False(t, state.IsLiked)

	// Актор пережил Reset: toggle все еще работает
	require.NoError(t, v.HandleLike(context.Background()))
	client.mu.Lock()
	assert.Equal(t, 1, client.toggleLikeCalls)
	client.mu.Unlock()
}
