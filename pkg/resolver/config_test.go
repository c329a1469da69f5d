package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.PreferDomestic)
	assert.False(t, cfg.PreferOTC)
	assert.Equal(t, DefaultTopK, cfg.TopK)
	assert.Equal(t, DefaultBatchWorkers, cfg.BatchWorkers)
	assert.True(t, cfg.SecondPass.Enabled)
	assert.Equal(t, defaultSecondPassMaxQueries, cfg.SecondPass.MaxQueries)
}

func TestLoadConfigFromReader(t *testing.T) {
	doc := `
preferDomestic: true
preferOTC: true
topK: 5
secondPass:
  enabled: false
  maxQueries: 4
cachePath: var/resolutions.bin
`
	cfg, err := LoadConfigFromReader(strings.NewReader(doc))
	require.NoError(t, err)
	assert.True(t, cfg.PreferOTC)
	assert.Equal(t, 5, cfg.TopK)
	assert.False(t, cfg.SecondPass.Enabled)
	assert.Equal(t, 4, cfg.SecondPass.MaxQueries)
	assert.Equal(t, "var/resolutions.bin", cfg.CachePath)
	// Untouched knobs keep their defaults.
	assert.Equal(t, DefaultAcceptScore, cfg.AcceptScore)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("noSuchKnob: 1\n"))
	assert.Error(t, err)
}

func TestLoadConfigEmptyDocument(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, cfg.TopK)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig("does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().TopK, cfg.TopK)
}
