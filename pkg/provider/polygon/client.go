// Package polygon implements the secondary reference-data search provider.
// Results are filtered to domestic and (optionally) OTC listings before
// they reach the scoring layer.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"tickerlens-api/pkg/match"
	"tickerlens-api/pkg/provider"
)

const (
	defaultBaseURL = "https://api.polygon.io"
	searchLimit    = "30"
)

var usExchanges = map[string]bool{
	"XNAS": true, "XNYS": true, "ARCX": true, "BATS": true, "IEXG": true,
	"LTSE": true, "XASE": true, "XPHL": true, "EDGA": true, "EDGX": true,
}

var otcExchanges = map[string]bool{
	"OTC": true, "OTCQX": true, "OTCQB": true, "PINX": true,
}

// Client calls the Polygon reference tickers endpoint.
type Client struct {
	name      string
	baseURL   string
	apiKey    string
	preferOTC bool
	fetcher   *provider.Fetcher
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

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithPreferOTC admits OTC/pink listings through the domestic filter.
func WithPreferOTC(on bool) Option {
	return func(c *Client) { c.preferOTC = on }
}

// WithFetcher injects the shared guarded fetcher.
func WithFetcher(f *provider.Fetcher) Option {
	return func(c *Client) {
		if f != nil {
			c.fetcher = f
		}
	}
}

// NewClient constructs a Polygon search client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		name:      "Polygon",
		baseURL:   defaultBaseURL,
		preferOTC: true,
		fetcher:   provider.NewFetcher(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements provider.Searcher.
func (c *Client) Name() string { return c.name }

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type tickersResponse struct {
	Results []tickerResult `json:"results"`
}

type tickerResult struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Market      string `json:"market"`
	Locale      string `json:"locale"`
	Exchange    string `json:"primary_exchange"`
	ExchangeMIC string `json:"primary_exchange_mic"`
}

func (c *Client) domesticOK(r tickerResult) bool {
	locale := strings.ToLower(r.Locale)
	if locale != "" && locale != "us" {
		return false
	}
	market := strings.ToLower(r.Market)
	ex := strings.ToUpper(r.Exchange)
	mic := strings.ToUpper(r.ExchangeMIC)

	if market == "stocks" {
		return true
	}
	if c.preferOTC && (market == "otc" || otcExchanges[ex] || otcExchanges[mic]) {
		return true
	}
	return usExchanges[ex] || usExchanges[mic]
}

// Search implements provider.Searcher.
func (c *Client) Search(ctx context.Context, query string) ([]provider.Hit, error) {
	if !c.Enabled() {
		return nil, nil
	}
	params := url.Values{}
	params.Set("search", query)
	params.Set("active", "true")
	params.Set("limit", searchLimit)
	params.Set("apiKey", c.apiKey)

	payload, err := c.fetcher.GetJSON(ctx, c.baseURL+"/v3/reference/tickers", params)
	if err != nil {
		return nil, fmt.Errorf("polygon search %q: %w", query, err)
	}
	if payload == nil {
		return nil, nil
	}

	var resp tickersResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("polygon decode %q: %w", query, err)
	}

	hits := make([]provider.Hit, 0, len(resp.Results))
	for _, r := range resp.Results {
		if !c.domesticOK(r) {
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(r.Ticker))
		if sym == "" {
			continue
		}
		name := r.Name
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
	provider.RegisterSearcher("polygon", func(name string, cfg *provider.SearcherConfig, f *provider.Fetcher) (provider.Searcher, error) {
		opts := []Option{WithFetcher(f), WithAPIKey(cfg.APIKey), WithPreferOTC(cfg.PreferOTC)}
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
