package finnhub

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"

	"tickerlens-api/pkg/provider"
)

// This test uses go-vcr to record/replay a real Finnhub search call.
// It skips by default if the cassette is absent and RECORD_CASSETTES != 1.
func TestClient_Search_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "finnhub_search.yaml")
	if _, err := os.Stat(cassette); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s", cassette)
		}
		err := os.MkdirAll(filepath.Dir(cassette), 0o755)
		assert.NoError(t, err, "mkdir cassettes dir should succeed")
	}

	r, err := recorder.New(cassette)
	assert.NoError(t, err, "recorder.New should not error")
	assert.NotNil(t, r)
	defer func() { _ = r.Stop() }()

	token := os.Getenv("FINNHUB_TOKEN")
	if token == "" {
		token = "recorded"
	}

	f := provider.NewFetcher(provider.WithHTTPClient(&http.Client{Transport: r}))
	c := NewClient(WithToken(token), WithFetcher(f))

	hits, err := c.Search(context.Background(), "apple")
	assert.NoError(t, err, "Search should not error")
	assert.NotEmpty(t, hits, "a real search for apple returns hits")
	for _, h := range hits {
		assert.NotEmpty(t, h.Symbol)
	}
}
