package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
)

// Mock LikeRepository
type LikeRepository struct {
	mock.Mock
}

func (m *LikeRepository) InsertIfAbsent(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	args := m.Called(ctx, q, userID, targetID, targetType)
	return args.Bool(0), args.Error(1)
}

func (m *LikeRepository) DeleteIfPresent(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	args := m.Called(ctx, q, userID, targetID, targetType)
	return args.Bool(0), args.Error(1)
}

func (m *LikeRepository) Exists(ctx context.Context, q interfaces.DBTX, userID, targetID uuid.UUID, targetType models.TargetType) (bool, error) {
	args := m.Called(ctx, q, userID, targetID, targetType)
	return args.Bool(0), args.Error(1)
}

func (m *LikeRepository) CountForTarget(ctx context.Context, q interfaces.DBTX, targetID uuid.UUID, targetType models.TargetType) (int64, error) {
	args := m.Called(ctx, q, targetID, targetType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LikeRepository) ListByUser(ctx context.Context, q interfaces.DBTX, userID uuid.UUID, targetType *models.TargetType, cursor string, limit int) ([]models.Like, string, error) {
	args := m.Called(ctx, q, userID, targetType, cursor, limit)
	var likes []models.Like
	if args.Get(0) != nil {
		likes = args.Get(0).([]models.Like)
	}
	return likes, args.String(1), args.Error(2)
}

// Mock FollowRepository
type FollowRepository struct {
	mock.Mock
}

func (m *FollowRepository) InsertIfAbsent(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, userID, bergerieID)
	return args.Bool(0), args.Error(1)
}

func (m *FollowRepository) DeleteIfPresent(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, userID, bergerieID)
	return args.Bool(0), args.Error(1)
}

func (m *FollowRepository) Exists(ctx context.Context, q interfaces.DBTX, userID, bergerieID uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, userID, bergerieID)
	return args.Bool(0), args.Error(1)
}

func (m *FollowRepository) ListFollowedBergeries(ctx context.Context, q interfaces.DBTX, userID uuid.UUID, cursor string, limit int) ([]models.FollowedBergerie, string, error) {
	args := m.Called(ctx, q, userID, cursor, limit)
	var followed []models.FollowedBergerie
	if args.Get(0) != nil {
		followed = args.Get(0).([]models.FollowedBergerie)
	}
	return followed, args.String(1), args.Error(2)
}

func (m *FollowRepository) ListFollowers(ctx context.Context, q interfaces.DBTX, bergerieID uuid.UUID, cursor string, limit int) ([]models.BergerieFollower, string, error) {
	args := m.Called(ctx, q, bergerieID, cursor, limit)
	var followers []models.BergerieFollower
	if args.Get(0) != nil {
		followers = args.Get(0).([]models.BergerieFollower)
	}
	return followers, args.String(1), args.Error(2)
}

func (m *FollowRepository) ListFollowedBergerieIDs(ctx context.Context, q interfaces.DBTX, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, q, userID)
	var ids []uuid.UUID
	if args.Get(0) != nil {
		ids = args.Get(0).([]uuid.UUID)
	}
	return ids, args.Error(1)
}

func (m *FollowRepository) ListFollowerIDs(ctx context.Context, q interfaces.DBTX, bergerieID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, q, bergerieID)
	var ids []uuid.UUID
	if args.Get(0) != nil {
		ids = args.Get(0).([]uuid.UUID)
	}
	return ids, args.Error(1)
}

// Mock BergerieRepository
type BergerieRepository struct {
	mock.Mock
}

func (m *BergerieRepository) Create(ctx context.Context, q interfaces.DBTX, b *models.Bergerie) error {
	args := m.Called(ctx, q, b)
	return args.Error(0)
}

func (m *BergerieRepository) GetByID(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Bergerie, error) {
	args := m.Called(ctx, q, id)
	var b *models.Bergerie
	if args.Get(0) != nil {
		b = args.Get(0).(*models.Bergerie)
	}
	return b, args.Error(1)
}

func (m *BergerieRepository) Update(ctx context.Context, q interfaces.DBTX, b *models.Bergerie) error {
	args := m.Called(ctx, q, b)
	return args.Error(0)
}

func (m *BergerieRepository) Delete(ctx context.Context, q interfaces.DBTX, id, ownerID uuid.UUID) error {
	args := m.Called(ctx, q, id, ownerID)
	return args.Error(0)
}

func (m *BergerieRepository) List(ctx context.Context, q interfaces.DBTX, cursor string, limit int) ([]*models.Bergerie, string, error) {
	args := m.Called(ctx, q, cursor, limit)
	var bergeries []*models.Bergerie
	if args.Get(0) != nil {
		bergeries = args.Get(0).([]*models.Bergerie)
	}
	return bergeries, args.String(1), args.Error(2)
}

func (m *BergerieRepository) Search(ctx context.Context, q interfaces.DBTX, term, cursor string, limit int) ([]*models.Bergerie, string, error) {
	args := m.Called(ctx, q, term, cursor, limit)
	var bergeries []*models.Bergerie
	if args.Get(0) != nil {
		bergeries = args.Get(0).([]*models.Bergerie)
	}
	return bergeries, args.String(1), args.Error(2)
}

func (m *BergerieRepository) ListByIDs(ctx context.Context, q interfaces.DBTX, ids []uuid.UUID) ([]*models.Bergerie, error) {
	args := m.Called(ctx, q, ids)
	var bergeries []*models.Bergerie
	if args.Get(0) != nil {
		bergeries = args.Get(0).([]*models.Bergerie)
	}
	return bergeries, args.Error(1)
}

func (m *BergerieRepository) IncrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *BergerieRepository) DecrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *BergerieRepository) IncrementFollowersCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *BergerieRepository) DecrementFollowersCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *BergerieRepository) IncrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *BergerieRepository) DecrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// Mock PostRepository
type PostRepository struct {
	mock.Mock
}

func (m *PostRepository) Create(ctx context.Context, q interfaces.DBTX, p *models.Post) error {
	args := m.Called(ctx, q, p)
	return args.Error(0)
}

func (m *PostRepository) GetByID(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, q, id)
	var p *models.Post
	if args.Get(0) != nil {
		p = args.Get(0).(*models.Post)
	}
	return p, args.Error(1)
}

func (m *PostRepository) Update(ctx context.Context, q interfaces.DBTX, p *models.Post) error {
	args := m.Called(ctx, q, p)
	return args.Error(0)
}

func (m *PostRepository) Delete(ctx context.Context, q interfaces.DBTX, id, authorID uuid.UUID) error {
	args := m.Called(ctx, q, id, authorID)
	return args.Error(0)
}

func (m *PostRepository) ListByBergerie(ctx context.Context, q interfaces.DBTX, bergerieID uuid.UUID, cursor string, limit int) ([]*models.Post, string, error) {
	args := m.Called(ctx, q, bergerieID, cursor, limit)
	var posts []*models.Post
	if args.Get(0) != nil {
		posts = args.Get(0).([]*models.Post)
	}
	return posts, args.String(1), args.Error(2)
}

func (m *PostRepository) ListByBergerieIDs(ctx context.Context, q interfaces.DBTX, bergerieIDs []uuid.UUID, cursor string, limit int) ([]*models.Post, string, error) {
	args := m.Called(ctx, q, bergerieIDs, cursor, limit)
	var posts []*models.Post
	if args.Get(0) != nil {
		posts = args.Get(0).([]*models.Post)
	}
	return posts, args.String(1), args.Error(2)
}

func (m *PostRepository) IncrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *PostRepository) DecrementLikesCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *PostRepository) IncrementCommentsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *PostRepository) AddComment(ctx context.Context, q interfaces.DBTX, c *models.Comment) error {
	args := m.Called(ctx, q, c)
	return args.Error(0)
}

func (m *PostRepository) ListComments(ctx context.Context, q interfaces.DBTX, postID uuid.UUID, cursor string, limit int) ([]*models.Comment, string, error) {
	args := m.Called(ctx, q, postID, cursor, limit)
	var comments []*models.Comment
	if args.Get(0) != nil {
		comments = args.Get(0).([]*models.Comment)
	}
	return comments, args.String(1), args.Error(2)
}

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByID(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, q, id)
	var u *models.User
	if args.Get(0) != nil {
		u = args.Get(0).(*models.User)
	}
	return u, args.Error(1)
}

func (m *UserRepository) IncrementFollowingCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *UserRepository) DecrementFollowingCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *UserRepository) IncrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *UserRepository) DecrementPostsCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *UserRepository) IncrementLikesGivenCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *UserRepository) DecrementLikesGivenCount(ctx context.Context, q interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// Mock NotificationRepository
type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, q interfaces.DBTX, n *models.Notification) error {
	args := m.Called(ctx, q, n)
	return args.Error(0)
}

func (m *NotificationRepository) ListByRecipient(ctx context.Context, q interfaces.DBTX, recipientID uuid.UUID, cursor string, limit int) ([]*models.Notification, string, error) {
	args := m.Called(ctx, q, recipientID, cursor, limit)
	var notifications []*models.Notification
	if args.Get(0) != nil {
		notifications = args.Get(0).([]*models.Notification)
	}
	return notifications, args.String(1), args.Error(2)
}

func (m *NotificationRepository) MarkRead(ctx context.Context, q interfaces.DBTX, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, q, id, recipientID)
	return args.Error(0)
}

func (m *NotificationRepository) MarkAllRead(ctx context.Context, q interfaces.DBTX, recipientID uuid.UUID) error {
	args := m.Called(ctx, q, recipientID)
	return args.Error(0)
}

func (m *NotificationRepository) Delete(ctx context.Context, q interfaces.DBTX, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, q, id, recipientID)
	return args.Error(0)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, q interfaces.DBTX, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, q, recipientID)
	return args.Get(0).(int64), args.Error(1)
}
