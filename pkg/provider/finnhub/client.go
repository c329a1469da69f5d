// Package finnhub implements the primary free-text symbol search provider.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"tickerlens-api/pkg/match"
	"tickerlens-api/pkg/provider"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Client calls the Finnhub symbol-search endpoint.
type Client struct {
	name    string
	baseURL string
	token   string
	fetcher *provider.Fetcher
}

// Option configures a new Client.
type Option func(*Client)

// WithBaseURL overrides the default API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sets the API key.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithFetcher injects the shared guarded fetcher.
func WithFetcher(f *provider.Fetcher) Option {
	return func(c *Client) {
		if f != nil {
			c.fetcher = f
		}
	}
}

// NewClient constructs a Finnhub search client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		name:    "Finnhub",
		baseURL: defaultBaseURL,
		fetcher: provider.NewFetcher(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements provider.Searcher.
func (c *Client) Name() string { return c.name }

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.token != "" }

type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Symbol        string `json:"symbol"`
		DisplaySymbol string `json:"displaySymbol"`
		Description   string `json:"description"`
		Type          string `json:"type"`
	} `json:"result"`
}

// Search implements provider.Searcher.
func (c *Client) Search(ctx context.Context, query string) ([]provider.Hit, error) {
	if !c.Enabled() {
		return nil, nil
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("token", c.token)

	payload, err := c.fetcher.GetJSON(ctx, c.baseURL+"/search", params)
	if err != nil {
		return nil, fmt.Errorf("finnhub search %q: %w", query, err)
	}
	if payload == nil {
		return nil, nil
	}

	var resp searchResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("finnhub decode %q: %w", query, err)
	}

	hits := make([]provider.Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		sym := strings.ToUpper(strings.TrimSpace(r.Symbol))
		if sym == "" {
			continue
		}
		name := r.Description
		if name == "" {
			name = r.DisplaySymbol
		}
		if name == "" {
			name = sym
		}
		typ := match.AssetCommonStock
		if strings.EqualFold(strings.TrimSpace(r.Type), "ETF") {
			typ = match.AssetETF
		}
		hits = append(hits, provider.Hit{Symbol: sym, Name: name, Type: typ})
	}
	return hits, nil
}

func init() {
	provider.RegisterSearcher("finnhub", func(name string, cfg *provider.SearcherConfig, f *provider.Fetcher) (provider.Searcher, error) {
		opts := []Option{WithFetcher(f), WithToken(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		c := NewClient(opts...)
		if name != "" {
			c.name = strings.ToUpper(name[:1]) + name[1:]
		}
		return c, nil
	})
}
