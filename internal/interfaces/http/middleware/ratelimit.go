package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backoffice/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key. A bucket holds limit
// tokens and refills at limit per window. Buckets idle for two windows are
// dropped by a background sweep that runs until Stop.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	limit   int
	window  time.Duration
	every   rate.Limit
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window per key
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(limit, window, time.Now)
	go rl.cleanup()
	return rl
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		clients: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		every:   rate.Limit(float64(limit) / window.Seconds()),
		now:     now,
		done:    make(chan struct{}),
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, b := range rl.clients {
		if now.Sub(b.lastSeen) > rl.window*2 {
			delete(rl.clients, key)
		}
	}
}

// Reserve consumes one token for key. It returns whether the request may
// proceed, the tokens left and, on refusal, how long until the next token.
func (rl *RateLimiter) Reserve(key string) (allowed bool, remaining int, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return true, int(math.Max(0, math.Floor(b.limiter.TokensAt(now)))), 0
	}
	r := b.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, 0, delay
}

// Allow reports whether a request for key may proceed
func (rl *RateLimiter) Allow(key string) bool {
	allowed, _, _ := rl.Reserve(key)
	return allowed
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per key derived by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, retryAfter := limiter.Reserve(keyFunc(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.Fail(dto.ErrCodeRateLimited, "Too many requests. Please try again later.", getRequestID(c)))
			return
		}
		c.Next()
	}
}
