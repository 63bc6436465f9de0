package cache

import (
	"context"
	"sync"
	"time"
)

type attemptWindow struct {
	count     int64
	expiresAt time.Time
}

// InMemoryLoginThrottle implements LoginThrottle in process memory.
// Counters are not shared between instances.
type InMemoryLoginThrottle struct {
	cfg       ThrottleConfig
	now       func() time.Time
	mu        sync.Mutex
	windows   map[string]attemptWindow
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLoginThrottle creates the throttle and starts a background
// goroutine that drops expired windows
func NewInMemoryLoginThrottle(cfg ThrottleConfig) *InMemoryLoginThrottle {
	t := newInMemoryLoginThrottle(cfg, time.Now)
	t.wg.Add(1)
	go t.cleanupLoop()
	return t
}

func newInMemoryLoginThrottle(cfg ThrottleConfig, now func() time.Time) *InMemoryLoginThrottle {
	return &InMemoryLoginThrottle{
		cfg:      cfg,
		now:      now,
		windows:  make(map[string]attemptWindow),
		stopChan: make(chan struct{}),
	}
}

// Hit records one attempt for key
func (t *InMemoryLoginThrottle) Hit(_ context.Context, key string) (ThrottleResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	w, ok := t.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		w = attemptWindow{expiresAt: now.Add(t.cfg.Window)}
	}
	w.count++
	t.windows[key] = w

	result := ThrottleResult{Attempts: w.count, Allowed: w.count <= int64(t.cfg.MaxAttempts)}
	if !result.Allowed {
		result.RetryAfter = w.expiresAt.Sub(now)
	}
	return result, nil
}

// Reset forgets the attempts for key
func (t *InMemoryLoginThrottle) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.windows, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (t *InMemoryLoginThrottle) Close() error {
	t.closeOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
	return nil
}

func (t *InMemoryLoginThrottle) cleanupLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopChan:
			return
		case <-ticker.C:
			t.cleanup()
		}
	}
}

func (t *InMemoryLoginThrottle) cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, w := range t.windows {
		if !now.Before(w.expiresAt) {
			delete(t.windows, key)
		}
	}
}

// Size returns the number of tracked keys
func (t *InMemoryLoginThrottle) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

var _ LoginThrottle = (*InMemoryLoginThrottle)(nil)
