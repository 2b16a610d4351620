package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"forensics/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// maxCacheValueSize caps a single cached value at 1MB
const maxCacheValueSize = 1 << 20

// Cache key prefixes
const (
	CacheKeyReputationPrefix = "reputation:"
	CacheKeyRateLimitPrefix  = "ratelimit:"
)

// RedisCache is a small JSON cache and counter store on top of go-redis.
// It backs the shared rate limiter and the second-tier reputation cache.
type RedisCache struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(addr, password string, db, poolSize int, logger *zap.SugaredLogger) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
			PoolSize: poolSize,
		}),
		logger: logger,
	}
}

// Ping checks the connection
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Close closes the connection pool
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Set stores value as JSON with a TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "marshal").Inc()
		return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}
	if len(data) > maxCacheValueSize {
		metrics.CacheErrors.WithLabelValues("redis", "size_limit").Inc()
		return fmt.Errorf("cache value for %s is %d bytes, limit is %d", key, len(data), maxCacheValueSize)
	}
	if err := rc.client.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "set").Inc()
		return err
	}
	return nil
}

// Get loads a JSON value into dest. It returns false when the key is absent.
func (rc *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false, nil
	}
	if err != nil {
		rc.logger.Errorw("Redis get failed", "key", key, "error", err)
		metrics.CacheErrors.WithLabelValues("redis", "get").Inc()
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "unmarshal").Inc()
		return false, fmt.Errorf("failed to unmarshal cache value for %s: %w", key, err)
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true, nil
}

// Delete removes a key
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, key).Err()
}

// IncrWindow increments the counter for key and starts its expiry on the
// first hit, so the key lives for exactly one window.
func (rc *RedisCache) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := rc.client.Incr(ctx, key).Result()
	if err != nil {
		metrics.CacheErrors.WithLabelValues("redis", "incr").Inc()
		return 0, err
	}
	if count == 1 {
		if err := rc.client.PExpire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// ReputationCacheKey builds the cache key for a reputation lookup
func ReputationCacheKey(targetType, value string) string {
	return CacheKeyReputationPrefix + targetType + ":" + value
}

// RateLimitCacheKey builds the counter key for a limiter bucket
func RateLimitCacheKey(limiter, clientKey string) string {
	return CacheKeyRateLimitPrefix + limiter + ":" + clientKey
}
