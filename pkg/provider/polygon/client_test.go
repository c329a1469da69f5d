package polygon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickerlens-api/pkg/guard"
	"tickerlens-api/pkg/match"
	"tickerlens-api/pkg/provider"
)

func testFetcher() *provider.Fetcher {
	return provider.NewFetcher(provider.WithGuards(guard.NewRegistry(guard.Settings{
		QPS: 1000, Burst: 100, FailThreshold: 100, Cooldown: time.Minute,
	})))
}

func TestClient_Search_FiltersNonDomestic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/reference/tickers", r.URL.Path)
		assert.Equal(t, "royal bank", r.URL.Query().Get("search"))
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		w.Write([]byte(`{
			"results": [
				{"ticker": "RY", "name": "Royal Bank of Canada", "type": "CS", "market": "stocks", "locale": "us"},
				{"ticker": "RY.TO", "name": "Royal Bank of Canada", "type": "CS", "market": "stocks", "locale": "ca"},
				{"ticker": "RYLBF", "name": "Royal London", "type": "CS", "market": "otc", "locale": "us"},
				{"ticker": "SPY", "name": "SPDR S&P 500 ETF Trust", "type": "ETF", "market": "stocks", "locale": "us"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("k"), WithPreferOTC(true), WithFetcher(testFetcher()))
	hits, err := c.Search(context.Background(), "royal bank")
	require.NoError(t, err)
	require.Len(t, hits, 3, "the ca-locale listing is dropped")
	assert.Equal(t, "RY", hits[0].Symbol)
	assert.Equal(t, "RYLBF", hits[1].Symbol, "OTC passes when preferred")
	assert.Equal(t, match.AssetETF, hits[2].Type)
}

func TestClient_Search_OTCRequiresPreference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"ticker":"NTDOY","name":"Nintendo Co Ltd","type":"CS","market":"otc","locale":"us"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("k"), WithPreferOTC(false), WithFetcher(testFetcher()))
	hits, err := c.Search(context.Background(), "nintendo")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestClient_Search_ExchangeMICAdmits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"ticker":"ABC","name":"ABC Corp","type":"CS","market":"","locale":"us","primary_exchange_mic":"XNYS"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("k"), WithFetcher(testFetcher()))
	hits, err := c.Search(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestClient_DisabledWithoutKey(t *testing.T) {
	c := NewClient()
	assert.False(t, c.Enabled())
	hits, err := c.Search(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Nil(t, hits)
}
