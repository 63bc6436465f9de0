package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
)

const (
	redisDialTimeout = 3 * time.Second
	redisIOTimeout   = time.Second
)

// NewRedisClient dials Redis and fails fast when the server does not answer
// a PING. Throttle and revocation calls sit on the login path, so read and
// write timeouts are kept short.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout+redisIOTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
