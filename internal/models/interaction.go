package models

import (
	"time"

	"github.com/google/uuid"
)

// TargetType описывает тип сущности, к которой относится лайк.
type TargetType string

const (
	TargetTypeBergerie TargetType = "bergerie"
	TargetTypePost     TargetType = "post"
)

// Valid reports whether t is one of the known target types.
func (t TargetType) Valid() bool {
	return t == TargetTypeBergerie || t == TargetTypePost
}

// Like is a membership row: one user's like of one target.
// Identified by the composite key (UserID, TargetID, TargetType); rows are
// created and deleted by toggles, never updated in place.
type Like struct {
	UserID     uuid.UUID  `json:"userId"`
	TargetID   uuid.UUID  `json:"targetId"`
	TargetType TargetType `json:"targetType"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Follow is a membership row: one user's follow of one bergerie.
// Follows are bergerie-only.
type Follow struct {
	UserID     uuid.UUID `json:"userId"`
	BergerieID uuid.UUID `json:"bergerieId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// InteractionStatus объединяет состояние лайка/подписки пользователя на цель.
type InteractionStatus struct {
	IsLiked     bool `json:"isLiked"`
	IsFollowing bool `json:"isFollowing"`
}
