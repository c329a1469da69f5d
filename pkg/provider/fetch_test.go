package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickerlens-api/pkg/guard"
)

func fastGuards() *guard.Registry {
	return guard.NewRegistry(guard.Settings{
		QPS:           1000,
		Burst:         100,
		FailThreshold: 100,
		Cooldown:      time.Minute,
	})
}

func newTestFetcher(extra ...FetcherOption) *Fetcher {
	opts := append([]FetcherOption{WithGuards(fastGuards()), WithMaxRetries(2)}, extra...)
	return NewFetcher(opts...)
}

func TestFetcher_CachesSuccessfulPayloads(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := newTestFetcher()
	params := url.Values{"q": {"acme"}}

	body, err := f.GetJSON(context.Background(), srv.URL, params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	body, err = f.GetJSON(context.Background(), srv.URL, params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second identical request is served from cache")
}

func TestFetcher_NegativeCacheOn422(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	f := newTestFetcher()
	params := url.Values{"q": {"class b"}}

	body, err := f.GetJSON(context.Background(), srv.URL, params)
	assert.NoError(t, err)
	assert.Nil(t, body)

	body, err = f.GetJSON(context.Background(), srv.URL, params)
	assert.NoError(t, err)
	assert.Nil(t, body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "bad query is not sent again")
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"recovered":true}`))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.GetJSON(context.Background(), srv.URL, url.Values{"q": {"x"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"recovered":true}`, string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetcher_ClientErrorIsEmptyWithoutRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.GetJSON(context.Background(), srv.URL, nil)
	assert.NoError(t, err)
	assert.Nil(t, body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetcher_TooManyRequestsCountsSevere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	reg := guard.NewRegistry(guard.Settings{QPS: 1000, Burst: 100, FailThreshold: 4, Cooldown: time.Minute})
	f := NewFetcher(WithGuards(reg), WithMaxRetries(2))

	body, err := f.GetJSON(context.Background(), srv.URL, nil)
	assert.NoError(t, err)
	assert.Nil(t, body)

	u, _ := url.Parse(srv.URL)
	assert.False(t, reg.For(u.Host).Breaker.Allow(),
		"two 429s at double weight reach the threshold of four")
}

func TestFetcher_SkipsWhenBreakerOpen(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	reg := fastGuards()
	u, _ := url.Parse(srv.URL)
	reg.For(u.Host).Breaker.RecordFailure(true)
	for i := 0; i < 60; i++ {
		reg.For(u.Host).Breaker.RecordFailure(true)
	}

	f := NewFetcher(WithGuards(reg))
	body, err := f.GetJSON(context.Background(), srv.URL, nil)
	assert.NoError(t, err)
	assert.Nil(t, body)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no call leaves the process while open")
}
