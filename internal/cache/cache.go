// Package cache keeps small station-local values in Redis, or in a local
// SQLite file when Redis is disabled or unreachable.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"price-lookup/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-value store with optional expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; ttl 0 keeps it until deleted
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Take returns the value and deletes it in one step
	Take(ctx context.Context, key string) ([]byte, error)
	// DeleteByPattern deletes all keys matching a trailing-* pattern
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

// NewCache returns a Redis cache when USE_REDIS is set and Redis answers a ping,
// otherwise the local store.
func NewCache(cfg *config.StationConfig, logger *zap.Logger) Cache {
	if !cfg.UseRedis {
		logger.Info("Redis disabled (USE_REDIS=false)")
		return newLocalCache(cfg.StorePath, logger)
	}

	addr := fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort)
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		// a station issues a handful of commands per scan
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		MaxRetries:   2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, falling back to the local store",
			zap.String("addr", addr),
			zap.Error(err),
		)
		rdb.Close()
		return newLocalCache(cfg.StorePath, logger)
	}

	logger.Info("Station preferences stored in Redis", zap.String("addr", addr), zap.Int("db", cfg.RedisDB))
	return NewRedisCache(rdb, logger)
}

// newLocalCache opens the SQLite store at path. An empty path, or a store that
// cannot be opened, gives an in-memory cache.
func newLocalCache(path string, logger *zap.Logger) Cache {
	if path == "" {
		logger.Warn("STATION_STORE is empty, station preferences kept in memory")
		return NewInMemoryCache()
	}
	c, err := NewSQLiteCache(path, logger)
	if err != nil {
		logger.Warn("Station store unavailable, station preferences kept in memory",
			zap.String("path", path),
			zap.Error(err),
		)
		return NewInMemoryCache()
	}
	logger.Info("Station preferences stored locally", zap.String("path", path))
	return c
}
