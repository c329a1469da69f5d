package config

import (
	"os"
	"path/filepath"
	"testing"

	"tickerlens-api/pkg/provider"
	_ "tickerlens-api/pkg/provider/finnhub"
)

// Test_sectionConfig_envExpansion verifies that section configs expand
// environment variables when loaded via their own LoadConfig functions.
func Test_sectionConfig_envExpansion(t *testing.T) {
	dir := t.TempDir()

	providersYAML := []byte(`
primary: finnhub
providers:
  finnhub:
    type: finnhub
    api_key: ${TL_FINNHUB_KEY}
    timeout: 2s
`)
	provPath := filepath.Join(dir, "providers.yaml")
	if err := os.WriteFile(provPath, providersYAML, 0o600); err != nil {
		t.Fatalf("write providers.yaml: %v", err)
	}

	t.Setenv("TL_FINNHUB_KEY", "test-key")

	provCfg, err := provider.LoadConfig(provPath)
	if err != nil {
		t.Fatalf("provider.LoadConfig: %v", err)
	}
	fh := provCfg.Providers["finnhub"]
	if fh == nil {
		t.Fatalf("provider 'finnhub' missing")
	}
	if fh.APIKey != "test-key" {
		t.Fatalf("APIKey not expanded, got %q", fh.APIKey)
	}
	if fh.Timeout.String() != "2s" {
		t.Fatalf("timeout not parsed, got %s", fh.Timeout)
	}
}

func Test_hydrateSections_withSectionFiles(t *testing.T) {
	dir := t.TempDir()

	providersYAML := []byte(`
primary: finnhub
providers:
  finnhub:
    type: finnhub
    api_key: k
`)
	if err := os.WriteFile(filepath.Join(dir, "providers.yaml"), providersYAML, 0o600); err != nil {
		t.Fatalf("write providers.yaml: %v", err)
	}
	resolverYAML := []byte(`
preferDomestic: true
topK: 5
`)
	if err := os.WriteFile(filepath.Join(dir, "resolver.yaml"), resolverYAML, 0o600); err != nil {
		t.Fatalf("write resolver.yaml: %v", err)
	}

	cfg := &Config{DataPath: "./data", baseDir: dir}
	cfg.Providers.File = "providers.yaml"
	cfg.Resolver.File = "resolver.yaml"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := cfg.hydrateSections(); err != nil {
		t.Fatalf("hydrateSections: %v", err)
	}

	if cfg.Providers.Value == nil {
		t.Fatalf("providers section not hydrated")
	}
	if cfg.Providers.Value.Primary != "finnhub" {
		t.Fatalf("primary got %q", cfg.Providers.Value.Primary)
	}
	if cfg.Resolver.Value == nil {
		t.Fatalf("resolver section not hydrated")
	}
	if cfg.Resolver.Value.TopK != 5 {
		t.Fatalf("resolver topK got %d", cfg.Resolver.Value.TopK)
	}
	if got := cfg.ResolverOrDefault().TopK; got != 5 {
		t.Fatalf("ResolverOrDefault topK got %d", got)
	}
}

func TestValidate_EnvBounds(t *testing.T) {
	cfg := &Config{Env: "staging", DataPath: "./data"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected env validation error")
	}
	cfg = &Config{DataPath: "./data"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !cfg.IsTestEnv() {
		t.Fatalf("empty env should default to test")
	}
}
