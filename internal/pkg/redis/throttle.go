package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle grants at most one acquisition per key within a window
type Throttle struct {
	client *redis.Client
	prefix string
}

// NewThrottle creates a throttle whose keys are namespaced by prefix
func NewThrottle(c *redis.Client, prefix string) *Throttle {
	return &Throttle{client: c, prefix: prefix}
}

// Acquire reports whether key was free. A successful acquisition blocks the key for window.
func (t *Throttle) Acquire(ctx context.Context, key string, window time.Duration) (bool, error) {
	return t.client.SetNX(ctx, t.prefix+key, time.Now().Unix(), window).Result()
}

// Release frees key before its window elapses
func (t *Throttle) Release(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.prefix+key).Err()
}
