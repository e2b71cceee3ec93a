package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// scanBatch is the SCAN COUNT hint used by DeleteByPattern.
const scanBatch = 100

// RedisCache stores values in Redis.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.value(c.client.Get(ctx, key), "GET", key)
}

// Take uses GETDEL (Redis 6.2+), so concurrent takers see the value once.
func (c *RedisCache) Take(ctx context.Context, key string) ([]byte, error) {
	return c.value(c.client.GetDel(ctx, key), "GETDEL", key)
}

func (c *RedisCache) value(cmd *redis.StringCmd, op, key string) ([]byte, error) {
	val, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, c.failed(op, key, err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return c.failed("SET", key, err)
	}
	return nil
}

func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return c.failed("SCAN", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
		return c.failed("UNLINK", pattern, err)
	}
	c.logger.Debug("Deleted keys by pattern", zap.String("pattern", pattern), zap.Int("count", len(keys)))
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) failed(op, key string, err error) error {
	c.logger.Warn("Redis command failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}
