package guard

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_OrderInsensitive(t *testing.T) {
	a := Fingerprint("https://example.com/search", url.Values{"q": {"acme"}, "token": {"x"}})
	b := Fingerprint("https://example.com/search", url.Values{"token": {"x"}, "q": {"acme"}})
	assert.Equal(t, a, b)

	c := Fingerprint("https://example.com/search", url.Values{"q": {"acme bank"}, "token": {"x"}})
	assert.NotEqual(t, a, c)
}

func TestTTLCache_HitMissExpiry(t *testing.T) {
	c := NewTTLCache(30*time.Millisecond, 16)
	key := Fingerprint("https://example.com", url.Values{"q": {"widget"}})

	assert.Nil(t, c.Get(key))
	c.Set(key, []byte(`{"ok":true}`))
	assert.Equal(t, []byte(`{"ok":true}`), c.Get(key))

	time.Sleep(40 * time.Millisecond)
	assert.Nil(t, c.Get(key), "stale entries are misses")
	assert.Equal(t, 0, c.Len(), "stale entries are removed on access")
}

func TestTTLCache_PrunesOldestTenth(t *testing.T) {
	c := NewTTLCache(time.Hour, 20)
	for i := 0; i < 21; i++ {
		c.Set(fmt.Sprintf("k%02d", i), []byte("v"))
		time.Sleep(time.Millisecond)
	}
	assert.LessOrEqual(t, c.Len(), 20)
	assert.Nil(t, c.Get("k00"), "oldest entry is dropped first")
	assert.NotNil(t, c.Get("k20"))
}

func TestNegativeCache(t *testing.T) {
	n := NewNegativeCache(25 * time.Millisecond)
	assert.False(t, n.Hit("bad"))
	n.Mark("bad")
	assert.True(t, n.Hit("bad"))
	time.Sleep(35 * time.Millisecond)
	assert.False(t, n.Hit("bad"), "negative marks expire")
}

func TestRegistry_LazyPerHost(t *testing.T) {
	r := NewRegistry(Settings{})
	a := r.For("finnhub.io")
	b := r.For("finnhub.io")
	c := r.For("api.polygon.io")
	assert.Same(t, a, b, "controls are kept for the life of the process")
	assert.NotSame(t, a, c)
}
