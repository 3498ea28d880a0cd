package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStats - денормализованные счетчики поста.
type PostStats struct {
	LikesCount    int64 `json:"likesCount"`
	CommentsCount int64 `json:"commentsCount"`
}

// Post is a media publication owned by a bergerie.
type Post struct {
	ID         uuid.UUID `json:"id"`
	BergerieID uuid.UUID `json:"bergerieId"`
	AuthorID   uuid.UUID `json:"authorId"`
	Caption    string    `json:"caption"`
	MediaURLs  []string  `json:"mediaUrls"`
	Stats      PostStats `json:"stats"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Comment on a post. Creating one increments the post's comments_count in the
// same transaction.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"postId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
