package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
)

// Ключи счетчиков. ID в ключе достаточно для шардирования, Lua не используем.
const (
	bergerieStatsKey = "stats:bergerie:%s"
	postStatsKey     = "stats:post:%s"
	userStatsKey     = "stats:user:%s"
)

// redisStatsCache реализует StatsCache поверх Redis.
type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.StatsCache = (*redisStatsCache)(nil)

// NewRedisStatsCache создает новый кэш счетчиков с заданным TTL.
func NewRedisStatsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.StatsCache {
	return &redisStatsCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisStatsCache"),
	}
}

func (c *redisStatsCache) get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return interfaces.ErrCacheMiss
		}
		c.logger.Error("Failed to get stats from redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to get stats from redis: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Поврежденная запись: удаляем и считаем промахом
		c.logger.Warn("Corrupted stats entry in redis, dropping", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return interfaces.ErrCacheMiss
	}
	return nil
}

func (c *redisStatsCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to set stats in redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set stats in redis: %w", err)
	}
	return nil
}

func (c *redisStatsCache) invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Failed to invalidate stats in redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to invalidate stats in redis: %w", err)
	}
	c.logger.Debug("Stats entry invalidated", zap.String("key", key))
	return nil
}

func (c *redisStatsCache) GetBergerieStats(ctx context.Context, bergerieID uuid.UUID) (*models.BergerieStats, error) {
	var stats models.BergerieStats
	if err := c.get(ctx, fmt.Sprintf(bergerieStatsKey, bergerieID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *redisStatsCache) SetBergerieStats(ctx context.Context, bergerieID uuid.UUID, stats *models.BergerieStats) error {
	return c.set(ctx, fmt.Sprintf(bergerieStatsKey, bergerieID), stats)
}

func (c *redisStatsCache) InvalidateBergerie(ctx context.Context, bergerieID uuid.UUID) error {
	return c.invalidate(ctx, fmt.Sprintf(bergerieStatsKey, bergerieID))
}

func (c *redisStatsCache) GetPostStats(ctx context.Context, postID uuid.UUID) (*models.PostStats, error) {
	var stats models.PostStats
	if err := c.get(ctx, fmt.Sprintf(postStatsKey, postID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *redisStatsCache) SetPostStats(ctx context.Context, postID uuid.UUID, stats *models.PostStats) error {
	return c.set(ctx, fmt.Sprintf(postStatsKey, postID), stats)
}

func (c *redisStatsCache) InvalidatePost(ctx context.Context, postID uuid.UUID) error {
	return c.invalidate(ctx, fmt.Sprintf(postStatsKey, postID))
}

func (c *redisStatsCache) GetUserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	var stats models.UserStats
	if err := c.get(ctx, fmt.Sprintf(userStatsKey, userID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *redisStatsCache) SetUserStats(ctx context.Context, userID uuid.UUID, stats *models.UserStats) error {
	return c.set(ctx, fmt.Sprintf(userStatsKey, userID), stats)
}

func (c *redisStatsCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	return c.invalidate(ctx, fmt.Sprintf(userStatsKey, userID))
}
