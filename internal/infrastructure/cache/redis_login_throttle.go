package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const loginThrottlePrefix = "auth:login_attempts:"

// RedisLoginThrottle implements LoginThrottle with INCR and a window TTL,
// so every instance shares the same counters
type RedisLoginThrottle struct {
	client *redis.Client
	cfg    ThrottleConfig
}

// NewRedisLoginThrottle creates a throttle backed by an existing client
func NewRedisLoginThrottle(client *redis.Client, cfg ThrottleConfig) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client, cfg: cfg}
}

// Hit increments the counter; the first hit of a window sets the TTL
func (t *RedisLoginThrottle) Hit(ctx context.Context, key string) (ThrottleResult, error) {
	k := loginThrottlePrefix + key

	count, err := t.client.Incr(ctx, k).Result()
	if err != nil {
		return ThrottleResult{}, fmt.Errorf("failed to record login attempt: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, k, t.cfg.Window).Err(); err != nil {
			return ThrottleResult{}, fmt.Errorf("failed to set login attempt window: %w", err)
		}
	}

	result := ThrottleResult{Attempts: count, Allowed: count <= int64(t.cfg.MaxAttempts)}
	if !result.Allowed {
		ttl, err := t.client.PTTL(ctx, k).Result()
		if err == nil && ttl > 0 {
			result.RetryAfter = ttl
		} else {
			result.RetryAfter = t.cfg.Window
		}
	}
	return result, nil
}

// Reset deletes the counter for key
func (t *RedisLoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, loginThrottlePrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

var _ LoginThrottle = (*RedisLoginThrottle)(nil)
