// Package guard bundles the outbound-call protections shared by every
// provider adapter: per-host token buckets and circuit breakers, a TTL
// cache for successful payloads, and a negative cache for known-bad
// queries. All state is process-wide and protected by per-structure locks.
package guard

import (
	"sync"
	"time"
)

// Settings carries the per-host protection parameters.
type Settings struct {
	QPS           float64
	Burst         int
	FailThreshold int
	Cooldown      time.Duration
}

// DefaultSettings mirrors the conservative defaults used for free-tier
// market data APIs.
func DefaultSettings() Settings {
	return Settings{
		QPS:           0.8,
		Burst:         2,
		FailThreshold: 14,
		Cooldown:      18 * time.Second,
	}
}

// Controls pairs the rate limiter and breaker for one upstream host.
// Controls are created lazily and live for the rest of the process.
type Controls struct {
	Bucket  *TokenBucket
	Breaker *CircuitBreaker
}

// Registry hands out per-host Controls, creating them on first use.
type Registry struct {
	mu       sync.Mutex
	defaults Settings
	hosts    map[string]*Controls
}

// NewRegistry constructs a registry using the given defaults for every
// host it creates.
func NewRegistry(defaults Settings) *Registry {
	if defaults.QPS <= 0 {
		defaults.QPS = DefaultSettings().QPS
	}
	if defaults.Burst <= 0 {
		defaults.Burst = DefaultSettings().Burst
	}
	if defaults.FailThreshold <= 0 {
		defaults.FailThreshold = DefaultSettings().FailThreshold
	}
	if defaults.Cooldown <= 0 {
		defaults.Cooldown = DefaultSettings().Cooldown
	}
	return &Registry{defaults: defaults, hosts: make(map[string]*Controls)}
}

// For returns the Controls for host, creating them if needed.
func (r *Registry) For(host string) *Controls {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctl, ok := r.hosts[host]; ok {
		return ctl
	}
	ctl := &Controls{
		Bucket:  NewTokenBucket(r.defaults.QPS, r.defaults.Burst),
		Breaker: NewCircuitBreaker(r.defaults.FailThreshold, r.defaults.Cooldown),
	}
	r.hosts[host] = ctl
	return ctl
}
