package guard

import (
	"sync"
	"time"
)

const (
	minRefillRate  = 0.01
	maxAcquireNap  = time.Second
	acquireNapSlop = 5 * time.Millisecond
)

// TokenBucket is a thread-safe continuous-refill rate limiter. Capacity is
// the burst size; tokens refill at rate per second based on elapsed wall
// clock since the last check. The balance never goes negative.
type TokenBucket struct {
	mu       sync.Mutex
	rate     float64
	capacity float64
	tokens   float64
	last     time.Time
}

// NewTokenBucket constructs a full bucket. Rates below 0.01/s are clamped
// up and bursts below 1 are clamped to 1.
func NewTokenBucket(ratePerSec float64, burst int) *TokenBucket {
	if ratePerSec < minRefillRate {
		ratePerSec = minRefillRate
	}
	capacity := float64(burst)
	if capacity < 1 {
		capacity = 1
	}
	return &TokenBucket{
		rate:     ratePerSec,
		capacity: capacity,
		tokens:   capacity,
		last:     time.Now(),
	}
}

// Acquire blocks the calling goroutine until n tokens are available, then
// takes them. There is no fairness guarantee across concurrent waiters.
// The lock is released before sleeping so other callers are not held up.
func (b *TokenBucket) Acquire(n float64) {
	if n <= 0 {
		return
	}
	for {
		b.mu.Lock()
		b.refillLocked()
		if b.tokens >= n {
			b.tokens -= n
			b.mu.Unlock()
			return
		}
		need := time.Duration((n - b.tokens) / b.rate * float64(time.Second))
		b.mu.Unlock()

		if need > maxAcquireNap {
			need = maxAcquireNap
		}
		time.Sleep(need + acquireNapSlop)
	}
}

// TryAcquire takes n tokens without blocking and reports whether it could.
func (b *TokenBucket) TryAcquire(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens < n {
		return false
	}
	b.tokens -= n
	return true
}

// Tokens returns the current balance after refill. Intended for tests.
func (b *TokenBucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	return b.tokens
}

func (b *TokenBucket) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(b.last).Seconds()
	b.last = now
	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}
