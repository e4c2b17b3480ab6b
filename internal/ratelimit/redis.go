package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// RedisLimiter shares fixed-window counters between replicas through Redis.
// The window starts with the first INCR of a key and ends when its TTL lapses.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	period time.Duration
	prefix string
}

// OpenRedisLimiter connects to the redis:// URL and verifies the connection.
func OpenRedisLimiter(ctx context.Context, rawURL string, limit int, period time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.WithContext(ctx).Ping().Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisLimiter(client, limit, period), nil
}

// NewRedisLimiter wraps an existing client.
func NewRedisLimiter(client *redis.Client, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, period: period, prefix: "filebucket:verify:"}
}

// Allow counts one attempt for key and reports whether it is within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	c := l.client.WithContext(ctx)
	k := l.prefix + key

	n, err := c.Incr(k).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}
	if n == 1 {
		if err := c.Expire(k, l.period).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return n <= int64(l.limit), nil
}

// Close releases the underlying connection pool.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
