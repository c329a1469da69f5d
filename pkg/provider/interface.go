// Package provider defines the external search provider surface: a common
// Searcher interface, a yaml-driven provider registry, and the resilient
// JSON fetcher every client shares.
package provider

import (
	"context"

	"tickerlens-api/pkg/match"
)

// Hit is one raw search result returned by an external provider.
type Hit struct {
	Symbol string
	Name   string
	Type   match.AssetType
}

// Searcher exposes free-text symbol search against one external provider.
type Searcher interface {
	// Name identifies the provider, e.g. "Finnhub".
	Name() string
	// Enabled reports whether the provider can be queried (API key present).
	Enabled() bool
	// Search runs one free-text query and returns raw hits. A nil slice
	// with nil error means the provider had nothing for this query.
	Search(ctx context.Context, query string) ([]Hit, error)
}
