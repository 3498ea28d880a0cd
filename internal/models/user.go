package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStats - денормализованные счетчики пользователя.
// FollowersCount зарезервирован: в текущем дизайне подписки только на бержери.
type UserStats struct {
	FollowersCount  int64 `json:"followersCount"`
	FollowingCount  int64 `json:"followingCount"`
	PostsCount      int64 `json:"postsCount"`
	LikesGivenCount int64 `json:"likesGivenCount"`
}

// User profile record. Authentication itself is an external concern; this
// service only reads identities out of verified tokens.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Stats       UserStats `json:"stats"`
	CreatedAt   time.Time `json:"createdAt"`
}
