package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore invalidates access tokens before they expire.
// Logout revokes the presented token by id; a password change revokes every
// token the user was issued up to that moment.
type RevocationStore interface {
	// Revoke marks a token id as revoked until ttl elapses
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether a token id was revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser revokes all tokens issued to the user before now
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserRevoked reports whether a token issued at issuedAt predates the
	// user's revocation. Both sides are compared in milliseconds, so a login
	// right after a password change is not caught by it.
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const revocationKeyPrefix = "auth:revoked:"

// RedisRevocationStore implements RevocationStore on Redis keys with TTLs
type RedisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore creates a revocation store on an existing client
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) jtiKey(jti string) string {
	return revocationKeyPrefix + "jti:" + jti
}

func (s *RedisRevocationStore) userKey(userID string) string {
	return revocationKeyPrefix + "user:" + userID
}

// Revoke stores the token id with the remaining token lifetime as TTL
func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks whether the token id is present
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// RevokeUser records the current unix time in milliseconds as the user's
// revocation point
func (s *RedisRevocationStore) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.userKey(userID), time.Now().UnixMilli(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsUserRevoked compares issuedAt with the stored revocation point
func (s *RedisRevocationStore) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	val, err := s.client.Get(ctx, s.userKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.UnixMilli() < revokedAt, nil
}

var _ RevocationStore = (*RedisRevocationStore)(nil)

// InMemoryRevocationStore is a process-local RevocationStore for single
// instance deployments and tests.
type InMemoryRevocationStore struct {
	mu    sync.Mutex
	jtis  map[string]time.Time // jti -> expiry of the revocation entry
	users map[string]time.Time // userID -> revocation point
	now   func() time.Time
}

// NewInMemoryRevocationStore creates an empty in-memory store
func NewInMemoryRevocationStore() *InMemoryRevocationStore {
	return &InMemoryRevocationStore{
		jtis:  make(map[string]time.Time),
		users: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Revoke records the token id until ttl elapses
func (s *InMemoryRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jtis[jti] = s.now().Add(ttl)
	return nil
}

// IsRevoked reports an unexpired entry and drops expired ones
func (s *InMemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.jtis[jti]
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		delete(s.jtis, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUser stores the current time as the revocation point
func (s *InMemoryRevocationStore) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = s.now()
	return nil
}

// IsUserRevoked compares at millisecond precision
func (s *InMemoryRevocationStore) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revokedAt, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	return issuedAt.UnixMilli() < revokedAt.UnixMilli(), nil
}

var _ RevocationStore = (*InMemoryRevocationStore)(nil)
