package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts requests in fixed windows shared by every replica.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "hanapwede:ratelimit:"}
}

// DialRedis parses redisURL, verifies connectivity and returns a store that
// owns the client.
func DialRedis(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStore(client), nil
}

// windowKey names the counter for the window containing now.
func (s *RedisStore) windowKey(key string, window time.Duration, now time.Time) (string, time.Time) {
	start := now.Truncate(window)
	return fmt.Sprintf("%s%s:%d", s.prefix, key, start.Unix()), start.Add(window)
}

// Take implements Store. The first request of a window sets its expiry.
func (s *RedisStore) Take(ctx context.Context, key string, rule Rule) (bool, int, time.Time, error) {
	redisKey, reset := s.windowKey(key, rule.Window, time.Now())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, rule.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	remaining := max(rule.Limit-count, 0)
	return count <= rule.Limit, remaining, reset, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
