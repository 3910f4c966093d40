package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter bounds request rates per caller key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// redisLimiter is a fixed-window counter backed by Redis INCR+EXPIRE.
type redisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter builds a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client) Limiter {
	return &redisLimiter{client: client}
}

func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	bucket := "ratelimit:" + key + ":" + time.Now().Truncate(window).Format("20060102150405")

	count, err := l.client.Incr(ctx, bucket).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		l.client.Expire(ctx, bucket, window)
	}
	return count <= int64(limit), nil
}
