package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiter enforces a per-minute token budget and a per-minute request
// budget. A zero budget disables that dimension.
type RateLimiter struct {
	TokensBucket   *TokenBucket
	RequestsBucket *TokenBucket

	mu sync.Mutex
}

// Ensure RateLimiter implements Limiter.
var _ Limiter = (*RateLimiter)(nil)

// New creates a limiter that refills both budgets every minute.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{}
	if tokensPerMinute > 0 {
		rl.TokensBucket = NewTokenBucket(tokensPerMinute, tokensPerMinute, time.Minute)
	}
	if requestsPerMinute > 0 {
		rl.RequestsBucket = NewTokenBucket(requestsPerMinute, requestsPerMinute, time.Minute)
	}
	return rl
}

// TryConsume consumes numTokens and one request only if both are available.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if !rl.TokensBucket.hasCapacity(now, numTokens) || !rl.RequestsBucket.hasCapacity(now, 1) {
		return false
	}
	rl.TokensBucket.consume(now, numTokens)
	rl.RequestsBucket.consume(now, 1)
	return true
}

var _ Reporter = (*RateLimiter)(nil)

// LimitedBy reports which budget would reject a request costing tokens.
// The request budget wins when both are exhausted.
func (rl *RateLimiter) LimitedBy(tokens int) string {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	switch {
	case !rl.RequestsBucket.hasCapacity(now, 1):
		return LimitRequests
	case !rl.TokensBucket.hasCapacity(now, tokens):
		return LimitTokens
	}
	return ""
}

// TimeUntilAvailable returns the longer of the two budgets' waits.
func (rl *RateLimiter) TimeUntilAvailable(tokens int) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	return max(rl.TokensBucket.timeUntil(now, tokens), rl.RequestsBucket.timeUntil(now, 1))
}

// TokenBucket implements a token bucket that refills continuously at
// capacity per refillInterval. A nil bucket never limits.
type TokenBucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      float64
	refillInterval time.Duration
	lastRefill     time.Time
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(capacity int, initialTokens int, refillInterval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:       capacity,
		remaining:      float64(min(initialTokens, capacity)),
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

// TryConsume atomically checks and consumes tokens.
func (tb *TokenBucket) TryConsume(tokens int) bool {
	if tb == nil {
		return true
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked(time.Now())
	if float64(tokens) > tb.remaining {
		return false
	}
	tb.remaining -= float64(tokens)
	return true
}

// Remaining returns the whole tokens currently available.
func (tb *TokenBucket) Remaining() int {
	if tb == nil {
		return 0
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refillLocked(time.Now())
	return int(tb.remaining)
}

// TimeUntilAvailable returns how long until tokens would be available (read-only).
func (tb *TokenBucket) TimeUntilAvailable(tokens int) time.Duration {
	return tb.timeUntil(time.Now(), tokens)
}

func (tb *TokenBucket) hasCapacity(now time.Time, tokens int) bool {
	if tb == nil {
		return true
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refillLocked(now)
	return float64(tokens) <= tb.remaining
}

func (tb *TokenBucket) consume(now time.Time, tokens int) {
	if tb == nil {
		return
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refillLocked(now)
	tb.remaining -= float64(tokens)
}

func (tb *TokenBucket) timeUntil(now time.Time, tokens int) time.Duration {
	if tb == nil {
		return 0
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refillLocked(now)

	missing := float64(tokens) - tb.remaining
	if missing <= 0 {
		return 0
	}

	perToken := float64(tb.refillInterval) / float64(tb.capacity)
	return time.Duration(missing * perToken)
}

func (tb *TokenBucket) refillLocked(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}
	refill := float64(tb.capacity) * float64(elapsed) / float64(tb.refillInterval)
	tb.remaining = min(float64(tb.capacity), tb.remaining+refill)
	tb.lastRefill = now
}
