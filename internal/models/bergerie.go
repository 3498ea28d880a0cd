package models

import (
	"time"

	"github.com/google/uuid"
)

// BergerieStats - денормализованные счетчики бержери.
// Изменяются только знаковыми дельтами в одной транзакции с membership-строкой.
type BergerieStats struct {
	LikesCount     int64 `json:"likesCount"`
	FollowersCount int64 `json:"followersCount"`
	PostsCount     int64 `json:"postsCount"`
}

// Bergerie is a farm/sheepfold entity users can follow and that owns posts.
type Bergerie struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"ownerId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Region      string        `json:"region"`
	CoverURL    string        `json:"coverUrl,omitempty"`
	Stats       BergerieStats `json:"stats"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// FollowedBergerie pairs a followed bergerie with the follow timestamp.
type FollowedBergerie struct {
	Bergerie   *Bergerie `json:"bergerie"`
	FollowedAt time.Time `json:"followedAt"`
}

// BergerieFollower pairs a follower with the follow timestamp.
type BergerieFollower struct {
	User       *User     `json:"user"`
	FollowedAt time.Time `json:"followedAt"`
}
