// Package interactionview keeps per-target optimistic like/follow state for a
// UI frontend. One View is exclusively owned by one UI instance; its mutex
// only orders access to its own fields.
package interactionview

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// InteractionClient is the slice of the interaction service the view needs.
type InteractionClient interface {
	IsLiked(ctx context.Context, actorID, targetID uuid.UUID, targetType models.TargetType) (bool, error)
	IsFollowing(ctx context.Context, actorID, bergerieID uuid.UUID) (bool, error)
	ToggleLike(ctx context.Context, actorID, targetID uuid.UUID, targetType models.TargetType) (bool, error)
	ToggleFollow(ctx context.Context, actorID, bergerieID uuid.UUID) (bool, error)
}

// State is a snapshot of the displayed interaction state.
type State struct {
	IsLiked        bool
	IsFollowing    bool
	LikesCount     int
	FollowersCount int
	Loading        bool
	LikeBusy       bool
	FollowBusy     bool
}

// View binds one target and tracks its displayed interaction state.
type View struct {
	mu     sync.Mutex
	client InteractionClient

	targetID   uuid.UUID
	targetType models.TargetType

	actorID  uuid.UUID
	hasActor bool
	closed   bool

	state State
}

// New binds a view to one target. The view starts in the Loading state until
// Load completes.
func New(client InteractionClient, targetID uuid.UUID, targetType models.TargetType) *View {
	return &View{
		client:     client,
		targetID:   targetID,
		targetType: targetType,
		state:      State{Loading: true},
	}
}

// State returns a snapshot of the current displayed state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Load resolves the actor's current like/follow state for the bound target.
// Loading is cleared on every exit path. Store errors propagate; the displayed
// flags are left untouched so the caller can decide how to present the failure.
func (v *View) Load(ctx context.Context, actorID uuid.UUID) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.actorID = actorID
	v.hasActor = actorID != uuid.Nil
	targetID, targetType := v.targetID, v.targetType
	hasActor := v.hasActor
	v.mu.Unlock()

	if !hasActor {
		v.finishLoad(false, false, false)
		return nil
	}

	liked, err := v.client.IsLiked(ctx, actorID, targetID, targetType)
	if err != nil {
		v.clearLoading()
		return err
	}

	following := false
	if targetType == models.TargetTypeBergerie {
		following, err = v.client.IsFollowing(ctx, actorID, targetID)
		if err != nil {
			v.clearLoading()
			return err
		}
	}

	v.finishLoad(true, liked, following)
	return nil
}

func (v *View) finishLoad(apply, liked, following bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if apply {
		v.state.IsLiked = liked
		v.state.IsFollowing = following
	}
	v.state.Loading = false
}

func (v *View) clearLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Loading = false
}

// UpdateCounts reseeds the displayed counters. Each field applies only when
// non-nil, so callers can refresh one counter without clobbering the other.
func (v *View) UpdateCounts(likes, followers *int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if likes != nil {
		v.state.LikesCount = *likes
	}
	if followers != nil {
		v.state.FollowersCount = *followers
	}
}

// HandleLike toggles the actor's like of the bound target. Without an actor it
// is a no-op. The busy flag is set synchronously before the service call, so a
// second tap in the same frame is dropped. On success the displayed state and
// counter move together; on failure both are left unchanged.
func (v *View) HandleLike(ctx context.Context) error {
	v.mu.Lock()
	if v.closed || !v.hasActor || v.state.LikeBusy {
		v.mu.Unlock()
		return nil
	}
	v.state.LikeBusy = true
	actorID, targetID, targetType := v.actorID, v.targetID, v.targetType
	v.mu.Unlock()

	liked, err := v.client.ToggleLike(ctx, actorID, targetID, targetType)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		// Поздний ответ после Close() отбрасываем
		return nil
	}
	v.state.LikeBusy = false
	if err != nil {
		return err
	}
	if liked != v.state.IsLiked {
		if liked {
			v.state.LikesCount++
		} else if v.state.LikesCount > 0 {
			v.state.LikesCount--
		}
		v.state.IsLiked = liked
	}
	return nil
}

// HandleFollow toggles the actor's follow of the bound bergerie. Same
// discipline as HandleLike. Follows are bergerie-only: on a post-bound view
// this is a no-op.
func (v *View) HandleFollow(ctx context.Context) error {
	v.mu.Lock()
	if v.closed || !v.hasActor || v.state.FollowBusy || v.targetType != models.TargetTypeBergerie {
		v.mu.Unlock()
		return nil
	}
	v.state.FollowBusy = true
	actorID, targetID := v.actorID, v.targetID
	v.mu.Unlock()

	following, err := v.client.ToggleFollow(ctx, actorID, targetID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.state.FollowBusy = false
	if err != nil {
		return err
	}
	if following != v.state.IsFollowing {
		if following {
			v.state.FollowersCount++
		} else if v.state.FollowersCount > 0 {
			v.state.FollowersCount--
		}
		v.state.IsFollowing = following
	}
	return nil
}

// Reset clears the displayed state when the bound target changes identity in
// the UI. The actor binding survives; counters must be reseeded via
// UpdateCounts.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.state = State{Loading: true}
}

// Close marks the view defunct. Late toggle completions and any further calls
// are dropped.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}
