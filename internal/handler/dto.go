package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"bergerie-server/internal/models"
)

// CustomValidator адаптирует go-playground/validator под echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator создает валидатор для echo.
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate реализует echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// Структура ответа для пагинированных списков.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// --- Запросы ---

type CreateBergerieRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Region      string `json:"region" validate:"max=120"`
	CoverURL    string `json:"cover_url" validate:"omitempty,url"`
}

// UpdateBergerieRequest - частичное обновление, nil-поля не трогаются.
type UpdateBergerieRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Region      *string `json:"region" validate:"omitempty,max=120"`
	CoverURL    *string `json:"cover_url" validate:"omitempty,url"`
}

type CreatePostRequest struct {
	BergerieID uuid.UUID `json:"bergerie_id" validate:"required"`
	Caption    string    `json:"caption" validate:"max=4000"`
	MediaURLs  []string  `json:"media_urls" validate:"max=10,dive,url"`
}

// UpdatePostRequest - частичное обновление, nil-поля не трогаются.
type UpdatePostRequest struct {
	Caption   *string  `json:"caption" validate:"omitempty,max=4000"`
	MediaURLs []string `json:"media_urls" validate:"omitempty,max=10,dive,url"`
}

type AddCommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// --- Ответы ---

// ToggleResponse возвращает итоговое состояние после toggle.
type ToggleResponse struct {
	Active bool `json:"active"`
}

type InteractionStatusResponse struct {
	IsLiked     bool `json:"is_liked"`
	IsFollowing bool `json:"is_following"`
}

type BergerieStatsDTO struct {
	LikesCount     int64 `json:"likes_count"`
	FollowersCount int64 `json:"followers_count"`
	PostsCount     int64 `json:"posts_count"`
}

type BergerieResponse struct {
	ID          uuid.UUID        `json:"id"`
	OwnerID     uuid.UUID        `json:"owner_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Region      string           `json:"region,omitempty"`
	CoverURL    string           `json:"cover_url,omitempty"`
	Stats       BergerieStatsDTO `json:"stats"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toBergerieResponse(b *models.Bergerie) BergerieResponse {
	return BergerieResponse{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Description: b.Description,
		Region:      b.Region,
		CoverURL:    b.CoverURL,
		Stats: BergerieStatsDTO{
			LikesCount:     b.Stats.LikesCount,
			FollowersCount: b.Stats.FollowersCount,
			PostsCount:     b.Stats.PostsCount,
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toBergerieResponses(bergeries []*models.Bergerie) []BergerieResponse {
	out := make([]BergerieResponse, len(bergeries))
	for i, b := range bergeries {
		out[i] = toBergerieResponse(b)
	}
	return out
}

type PostStatsDTO struct {
	LikesCount    int64 `json:"likes_count"`
	CommentsCount int64 `json:"comments_count"`
}

type PostResponse struct {
	ID         uuid.UUID    `json:"id"`
	BergerieID uuid.UUID    `json:"bergerie_id"`
	AuthorID   uuid.UUID    `json:"author_id"`
	Caption    string       `json:"caption,omitempty"`
	MediaURLs  []string     `json:"media_urls,omitempty"`
	Stats      PostStatsDTO `json:"stats"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func toPostResponse(p *models.Post) PostResponse {
	return PostResponse{
		ID:         p.ID,
		BergerieID: p.BergerieID,
		AuthorID:   p.AuthorID,
		Caption:    p.Caption,
		MediaURLs:  p.MediaURLs,
		Stats: PostStatsDTO{
			LikesCount:    p.Stats.LikesCount,
			CommentsCount: p.Stats.CommentsCount,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPostResponses(posts []*models.Post) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i, p := range posts {
		out[i] = toPostResponse(p)
	}
	return out
}

type UserStatsDTO struct {
	FollowersCount  int64 `json:"followers_count"`
	FollowingCount  int64 `json:"following_count"`
	PostsCount      int64 `json:"posts_count"`
	LikesGivenCount int64 `json:"likes_given_count"`
}

type UserResponse struct {
	ID          uuid.UUID    `json:"id"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	Stats       UserStatsDTO `json:"stats"`
	CreatedAt   time.Time    `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Stats: UserStatsDTO{
			FollowersCount:  u.Stats.FollowersCount,
			FollowingCount:  u.Stats.FollowingCount,
			PostsCount:      u.Stats.PostsCount,
			LikesGivenCount: u.Stats.LikesGivenCount,
		},
		CreatedAt: u.CreatedAt,
	}
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
