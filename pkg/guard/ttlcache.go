package guard

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fingerprint derives a stable cache key from a request URL and its query
// parameters. Parameters are sorted so equivalent requests collide.
func Fingerprint(rawURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(rawURL)
	for _, k := range keys {
		vs := append([]string(nil), params[k]...)
		sort.Strings(vs)
		for _, v := range vs {
			sb.WriteByte('\x00')
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(v)
		}
	}
	sum := sha1.Sum([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

type ttlEntry struct {
	at      time.Time
	payload []byte
}

// TTLCache keeps successful response payloads keyed by request fingerprint
// for a bounded lifetime. Stale entries are treated as misses and removed
// lazily on access. When the cache exceeds its size cap the oldest 10% of
// entries are dropped.
type TTLCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	store map[string]ttlEntry
}

// NewTTLCache constructs an empty cache.
func NewTTLCache(ttl time.Duration, maxItems int) *TTLCache {
	if maxItems < 1 {
		maxItems = 1
	}
	return &TTLCache{
		ttl:   ttl,
		max:   maxItems,
		store: make(map[string]ttlEntry),
	}
}

// Get returns the cached payload for key, or nil on a miss or stale entry.
func (c *TTLCache) Get(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store[key]
	if !ok {
		return nil
	}
	if time.Since(e.at) > c.ttl {
		delete(c.store, key)
		return nil
	}
	return e.payload
}

// Set stores payload under key and prunes if the cache is over capacity.
func (c *TTLCache) Set(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = ttlEntry{at: time.Now(), payload: payload}
	c.pruneLocked()
}

// Len returns the number of entries, stale ones included.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

func (c *TTLCache) pruneLocked() {
	if len(c.store) <= c.max {
		return
	}
	type aged struct {
		key string
		at  time.Time
	}
	items := make([]aged, 0, len(c.store))
	for k, e := range c.store {
		items = append(items, aged{key: k, at: e.at})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].at.Before(items[j].at) })
	drop := len(items) / 10
	if drop < 1 {
		drop = 1
	}
	for _, it := range items[:drop] {
		delete(c.store, it.key)
	}
}

// NegativeCache remembers request fingerprints that recently failed with a
// non-retryable client error so the same bad query is not retried for a
// short window.
type NegativeCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	store map[string]time.Time
}

// NewNegativeCache constructs an empty negative cache.
func NewNegativeCache(ttl time.Duration) *NegativeCache {
	return &NegativeCache{ttl: ttl, store: make(map[string]time.Time)}
}

// Hit reports whether key failed within the TTL window. Expired marks are
// removed on access.
func (c *NegativeCache) Hit(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	at, ok := c.store[key]
	if !ok {
		return false
	}
	if time.Since(at) > c.ttl {
		delete(c.store, key)
		return false
	}
	return true
}

// Mark records key as recently failed.
func (c *NegativeCache) Mark(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = time.Now()
}
