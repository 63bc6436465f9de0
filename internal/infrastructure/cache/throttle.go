package cache

import (
	"context"
	"strings"
	"time"
)

// ThrottleResult is the outcome of recording one attempt
type ThrottleResult struct {
	Allowed    bool
	Attempts   int64
	RetryAfter time.Duration
}

// LoginThrottle counts login attempts per key inside a fixed window.
// Attempts are counted before credentials are checked so a missing account
// and a wrong password consume the budget the same way.
type LoginThrottle interface {
	// Hit records one attempt for key
	Hit(ctx context.Context, key string) (ThrottleResult, error)

	// Reset forgets the attempts for key, called after a successful login
	Reset(ctx context.Context, key string) error
}

// ThrottleConfig bounds how many attempts fit in one window
type ThrottleConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// LoginThrottleKey builds the counter key for an email and client address
func LoginThrottleKey(email, clientIP string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "|" + clientIP
}
