package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"capsule-hotel/internal/data/entity"
	"capsule-hotel/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisCache struct {
	client  *redis.Client
	roomTTL time.Duration
	log     *zap.Logger
}

func NewRedisCache(cfg utils.RedisConfig, log *zap.Logger) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		roomTTL: cfg.RoomTTL,
		log:     log.With(zap.String("cache", "redis")),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetRooms returns the cached catalog; ok is false on a miss.
func (c *RedisCache) GetRooms(ctx context.Context) ([]*entity.Room, bool, error) {
	data, err := c.client.Get(ctx, roomsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get room catalog: %w", err)
	}

	var rooms []*entity.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		c.log.Warn("Dropping unreadable room catalog", zap.Error(err))
		return nil, false, nil
	}
	return rooms, true, nil
}

func (c *RedisCache) SetRooms(ctx context.Context, rooms []*entity.Room) error {
	payload, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("encode room catalog: %w", err)
	}
	return c.client.Set(ctx, roomsKey(), payload, c.roomTTL).Err()
}

func (c *RedisCache) InvalidateRooms(ctx context.Context) error {
	return c.client.Del(ctx, roomsKey()).Err()
}

// TryLock takes a best-effort cluster-wide lock that expires after ttl.
func (c *RedisCache) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, lockKey(name), "locked", ttl).Result()
}

func (c *RedisCache) Unlock(ctx context.Context, name string) error {
	return c.client.Del(ctx, lockKey(name)).Err()
}

func roomsKey() string {
	return "cache:rooms"
}

func lockKey(name string) string {
	return "lock:" + name
}
