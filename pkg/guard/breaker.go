package guard

import (
	"sync"
	"time"
)

// CircuitBreaker tracks failures for one upstream host and temporarily
// blocks outbound calls once a threshold is reached. Severe failures
// (such as HTTP 429) count double. Reaching the threshold opens the
// breaker for a fixed cooldown and soft-resets the counter so the next
// window starts clean.
type CircuitBreaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
}

// NewCircuitBreaker constructs a closed breaker.
func NewCircuitBreaker(failThreshold int, cooldown time.Duration) *CircuitBreaker {
	if failThreshold < 1 {
		failThreshold = 1
	}
	return &CircuitBreaker{threshold: failThreshold, cooldown: cooldown}
}

// Allow reports whether outbound calls may proceed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return !time.Now().Before(cb.openUntil)
}

// RecordSuccess clears the failure counter and closes the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.openUntil = time.Time{}
}

// RecordFailure adds one failure (two when severe). Crossing the threshold
// opens the breaker for the cooldown and resets the counter.
func (cb *CircuitBreaker) RecordFailure(severe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if severe {
		cb.failures += 2
	} else {
		cb.failures++
	}
	if cb.failures >= cb.threshold {
		cb.openUntil = time.Now().Add(cb.cooldown)
		cb.failures = 0
	}
}

// Failures returns the current counter value. Intended for tests.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}
