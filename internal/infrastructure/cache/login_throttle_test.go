package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testThrottleConfig = ThrottleConfig{MaxAttempts: 3, Window: time.Minute}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLoginThrottleKey(t *testing.T) {
	assert.Equal(t, "bob@example.com|10.0.0.1", LoginThrottleKey("  Bob@Example.com ", "10.0.0.1"))
}

func TestRedisLoginThrottle(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	throttle := NewRedisLoginThrottle(client, testThrottleConfig)
	key := LoginThrottleKey("bob@example.com", "1.2.3.4")

	for i := 1; i <= 3; i++ {
		res, err := throttle.Hit(ctx, key)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i)
		assert.Equal(t, int64(i), res.Attempts)
	}

	res, err := throttle.Hit(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)

	t.Run("window ttl is set once", func(t *testing.T) {
		ttl := mr.TTL(loginThrottlePrefix + key)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("other keys are independent", func(t *testing.T) {
		res, err := throttle.Hit(ctx, LoginThrottleKey("bob@example.com", "5.6.7.8"))
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("window expiry restores the budget", func(t *testing.T) {
		mr.FastForward(time.Minute + time.Second)
		res, err := throttle.Hit(ctx, key)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, int64(1), res.Attempts)
	})

	t.Run("reset clears the counter", func(t *testing.T) {
		require.NoError(t, throttle.Reset(ctx, key))
		assert.False(t, mr.Exists(loginThrottlePrefix+key))
	})
}

func TestRedisLoginThrottle_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	throttle := NewRedisLoginThrottle(client, testThrottleConfig)

	_, err := throttle.Hit(context.Background(), "k")
	assert.Error(t, err)
}

func TestInMemoryLoginThrottle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	throttle := newInMemoryLoginThrottle(testThrottleConfig, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		res, err := throttle.Hit(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	now = now.Add(20 * time.Second)
	res, err := throttle.Hit(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(4), res.Attempts)
	assert.Equal(t, 40*time.Second, res.RetryAfter)

	now = now.Add(40 * time.Second)
	res, err = throttle.Hit(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "a new window starts once the old one ends")
	assert.Equal(t, int64(1), res.Attempts)

	require.NoError(t, throttle.Reset(ctx, "k"))
	assert.Zero(t, throttle.Size())

	_, _ = throttle.Hit(ctx, "stale")
	now = now.Add(2 * time.Minute)
	throttle.cleanup()
	assert.Zero(t, throttle.Size())
}

func TestInMemoryLoginThrottle_Close(t *testing.T) {
	throttle := NewInMemoryLoginThrottle(testThrottleConfig)
	assert.NoError(t, throttle.Close())
	assert.NoError(t, throttle.Close())
}
