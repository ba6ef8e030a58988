package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of a single Allow call
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter implements a per-key token bucket held in process memory
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// NewMemoryLimiter allows rate requests per window for each key
func NewMemoryLimiter(rate int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

// Run evicts idle visitors until ctx is cancelled
func (l *MemoryLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-ctx.Done():
			return
		}
	}
}

func (l *MemoryLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.window*2 {
			delete(l.visitors, key)
		}
	}
}

// Allow consumes one token for key
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, exists := l.visitors[key]
	if !exists {
		v = &visitor{tokens: float64(l.rate), lastSeen: now}
		l.visitors[key] = v
	}

	// refill proportionally to elapsed time
	perToken := l.window / time.Duration(l.rate)
	elapsed := now.Sub(v.lastSeen)
	if elapsed > 0 {
		v.tokens += float64(elapsed) / float64(perToken)
		if v.tokens > float64(l.rate) {
			v.tokens = float64(l.rate)
		}
		v.lastSeen = now
	}

	if v.tokens >= 1 {
		v.tokens--
		return Decision{Allowed: true, Limit: l.rate, Remaining: int(v.tokens)}, nil
	}

	wait := time.Duration((1 - v.tokens) * float64(perToken))
	return Decision{Allowed: false, Limit: l.rate, Remaining: 0, RetryAfter: wait}, nil
}

func (l *MemoryLimiter) visitorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
