package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopadmin/backoffice/internal/infrastructure/auth"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the shared-state stores the auth flow needs
type Stores struct {
	Throttle    LoginThrottle
	Revocations auth.RevocationStore
	// Redis is nil when the in-memory fallback is in use
	Redis *redis.Client

	closers []func() error
}

// Close releases the Redis client or stops in-memory cleanup goroutines
func (s *Stores) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// StoreFactory creates stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	throttleConfig        ThrottleConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(config.RedisConfig) (*redis.Client, error)
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithRedisConnector replaces how the Redis client is dialed
func WithRedisConnector(connect func(config.RedisConfig) (*redis.Client, error)) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.connect = connect
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(redisCfg config.RedisConfig, authCfg config.AuthConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig: redisCfg,
		throttleConfig: ThrottleConfig{
			MaxAttempts: authCfg.LoginMaxAttempts,
			Window:      authCfg.LoginWindow,
		},
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connect:               NewRedisClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStores uses Redis when it is enabled and reachable, and otherwise
// falls back to in-memory stores if that is allowed
func (f *StoreFactory) CreateStores() (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory throttle and revocation stores")
		return f.createInMemory(), nil
	}

	client, err := f.connect(f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis throttle and revocation stores", zap.String("addr", f.redisConfig.Addr()))
		return &Stores{
			Throttle:    NewRedisLoginThrottle(client, f.throttleConfig),
			Revocations: auth.NewRedisRevocationStore(client),
			Redis:       client,
			closers:     []func() error{client.Close},
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Login throttling and token revocation will not be shared between instances.",
		zap.Error(err),
	)
	return f.createInMemory(), nil
}

func (f *StoreFactory) createInMemory() *Stores {
	throttle := NewInMemoryLoginThrottle(f.throttleConfig)
	return &Stores{
		Throttle:    throttle,
		Revocations: auth.NewInMemoryRevocationStore(),
		closers:     []func() error{throttle.Close},
	}
}
