package provider

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/pkg/guard"
)

const (
	defaultHTTPTimeout = 4 * time.Second
	defaultMaxRetries  = 2
	defaultTTL         = time.Hour
	defaultTTLItems    = 4096
	defaultNegativeTTL = 3 * time.Minute
	maxRetryAfterWait  = 3 * time.Second
)

// Fetcher performs guarded JSON GETs on behalf of provider clients. Every
// request flows through the TTL cache, the negative cache, the host's
// circuit breaker and its token bucket, in that order, then retries
// transient failures with backoff and jitter.
type Fetcher struct {
	httpClient *http.Client
	registry   *guard.Registry
	ttl        *guard.TTLCache
	neg        *guard.NegativeCache
	maxRetries int
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if hc != nil {
			f.httpClient = hc
		}
	}
}

// WithGuards injects shared per-host controls.
func WithGuards(reg *guard.Registry) FetcherOption {
	return func(f *Fetcher) {
		if reg != nil {
			f.registry = reg
		}
	}
}

// WithCaches injects the response and negative caches.
func WithCaches(ttl *guard.TTLCache, neg *guard.NegativeCache) FetcherOption {
	return func(f *Fetcher) {
		if ttl != nil {
			f.ttl = ttl
		}
		if neg != nil {
			f.neg = neg
		}
	}
}

// WithMaxRetries adjusts the per-request attempt budget.
func WithMaxRetries(max int) FetcherOption {
	return func(f *Fetcher) {
		if max > 0 {
			f.maxRetries = max
		}
	}
}

// NewFetcher constructs a Fetcher with the default guard settings.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		registry:   guard.NewRegistry(guard.DefaultSettings()),
		ttl:        guard.NewTTLCache(defaultTTL, defaultTTLItems),
		neg:        guard.NewNegativeCache(defaultNegativeTTL),
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// withOverrides derives a fetcher for a single provider. The guards and
// caches stay shared; only the HTTP timeout and the retry budget change.
func (f *Fetcher) withOverrides(timeout time.Duration, maxRetries int) *Fetcher {
	if timeout <= 0 && maxRetries <= 0 {
		return f
	}
	nf := *f
	if timeout > 0 {
		hc := *f.httpClient
		hc.Timeout = timeout
		nf.httpClient = &hc
	}
	if maxRetries > 0 {
		nf.maxRetries = maxRetries
	}
	return &nf
}

// GetJSON fetches rawURL with params and returns the response payload.
// A (nil, nil) return means the request was legitimately skipped or came
// back empty: negative-cache hit, open breaker, or a non-retryable client
// error. A non-nil error means transient failures exhausted the retry
// budget.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	fp := guard.Fingerprint(rawURL, params)
	if payload := f.ttl.Get(fp); payload != nil {
		return payload, nil
	}
	if f.neg.Hit(fp) {
		logx.WithContext(ctx).Debugf("negative cache skip url=%s", rawURL)
		return nil, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	ctl := f.registry.For(u.Host)
	if !ctl.Breaker.Allow() {
		logx.WithContext(ctx).Infof("circuit open host=%s", u.Host)
		return nil, nil
	}

	full := rawURL
	if len(params) > 0 {
		full = rawURL + "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		ctl.Bucket.Acquire(1)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			ctl.Breaker.RecordFailure(false)
			lastErr = err
			sleepBackoff(0.25, 0.20, attempt)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		code := resp.StatusCode

		switch {
		case code == http.StatusTooManyRequests:
			ctl.Breaker.RecordFailure(true)
			logx.WithContext(ctx).Errorf("http 429 url=%s", rawURL)
			waitRetryAfter(resp.Header.Get("Retry-After"), attempt)
			continue

		case code == http.StatusUnprocessableEntity:
			// The query itself is bad; remember and stop asking.
			ctl.Breaker.RecordFailure(false)
			f.neg.Mark(fp)
			logx.WithContext(ctx).Errorf("http 422 url=%s", rawURL)
			return nil, nil

		case code >= 500:
			ctl.Breaker.RecordFailure(false)
			logx.WithContext(ctx).Errorf("http %d url=%s", code, rawURL)
			sleepBackoff(0.22, 0.15, attempt)
			continue

		case code >= 400:
			ctl.Breaker.RecordFailure(false)
			logx.WithContext(ctx).Errorf("http %d url=%s", code, rawURL)
			return nil, nil
		}

		if readErr != nil {
			ctl.Breaker.RecordFailure(false)
			lastErr = readErr
			sleepBackoff(0.25, 0.20, attempt)
			continue
		}

		ctl.Breaker.RecordSuccess()
		f.ttl.Set(fp, body)
		return body, nil
	}
	return nil, lastErr
}

func sleepBackoff(base, jitter float64, attempt int) {
	d := base*float64(attempt+1) + rand.Float64()*jitter
	time.Sleep(time.Duration(d * float64(time.Second)))
}

func waitRetryAfter(header string, attempt int) {
	if header != "" {
		if secs, err := strconv.ParseFloat(header, 64); err == nil {
			wait := time.Duration(secs * float64(time.Second))
			if wait > maxRetryAfterWait {
				wait = maxRetryAfterWait
			}
			time.Sleep(wait)
			return
		}
		time.Sleep(600 * time.Millisecond)
		return
	}
	sleepBackoff(0.35, 0.25, attempt)
}
