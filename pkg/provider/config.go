package provider

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"tickerlens-api/pkg/confkit"
)

// Config describes the external search providers available to the engine.
type Config struct {
	// Primary and Secondary name the providers queried in order.
	Primary   string                     `yaml:"primary"`
	Secondary string                     `yaml:"secondary"`
	Providers map[string]*SearcherConfig `yaml:"providers"`
}

// SearcherConfig configures a single search provider.
type SearcherConfig struct {
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	// PreferOTC widens the domestic filter to OTC/ADR listings where the
	// provider supports market filtering.
	PreferOTC bool `yaml:"prefer_otc"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
	MaxRetries int           `yaml:"max_retries"`
}

// SearcherBuilder constructs a Searcher from configuration.
type SearcherBuilder func(name string, cfg *SearcherConfig, f *Fetcher) (Searcher, error)

var (
	searcherRegistry   = make(map[string]SearcherBuilder)
	searcherRegistryMu sync.RWMutex
)

// RegisterSearcher registers a provider constructor under a type name.
func RegisterSearcher(typeName string, builder SearcherBuilder) {
	searcherRegistryMu.Lock()
	defer searcherRegistryMu.Unlock()
	searcherRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupSearcherBuilder(typeName string) (SearcherBuilder, bool) {
	searcherRegistryMu.RLock()
	defer searcherRegistryMu.RUnlock()
	builder, ok := searcherRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// LoadConfig reads provider configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open provider config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads provider configuration from the default project location
// and panics on error.
func MustLoad() *Config {
	path := confkit.MustProjectPath("etc/providers.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read provider config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal provider config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Providers == nil {
		c.Providers = make(map[string]*SearcherConfig)
	}
	for name, sc := range c.Providers {
		if sc == nil {
			sc = &SearcherConfig{}
			c.Providers[name] = sc
		}
		sc.Type = strings.TrimSpace(os.ExpandEnv(sc.Type))
		sc.BaseURL = strings.TrimSpace(os.ExpandEnv(sc.BaseURL))
		sc.APIKey = strings.TrimSpace(os.ExpandEnv(sc.APIKey))
		if sc.TimeoutRaw != "" {
			d, err := time.ParseDuration(os.ExpandEnv(sc.TimeoutRaw))
			if err != nil {
				return fmt.Errorf("provider %s: parse timeout: %w", name, err)
			}
			sc.Timeout = d
		}
	}
	c.Primary = strings.TrimSpace(c.Primary)
	c.Secondary = strings.TrimSpace(c.Secondary)
	return nil
}

// Validate checks referential integrity of the provider map.
func (c *Config) Validate() error {
	for name, sc := range c.Providers {
		if sc.Type == "" {
			return fmt.Errorf("provider %s: type is required", name)
		}
	}
	if c.Primary != "" {
		if _, ok := c.Providers[c.Primary]; !ok {
			return fmt.Errorf("primary provider %q is not defined", c.Primary)
		}
	}
	if c.Secondary != "" {
		if _, ok := c.Providers[c.Secondary]; !ok {
			return fmt.Errorf("secondary provider %q is not defined", c.Secondary)
		}
	}
	return nil
}

// BuildSearchers instantiates every configured provider using the shared
// fetcher, specialised per provider when the config sets a timeout or a
// retry budget. Unknown types are an error; providers without credentials
// are built anyway and report Enabled() == false.
func (c *Config) BuildSearchers(f *Fetcher) (map[string]Searcher, error) {
	out := make(map[string]Searcher, len(c.Providers))
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sc := c.Providers[name]
		builder, ok := lookupSearcherBuilder(sc.Type)
		if !ok {
			return nil, fmt.Errorf("provider %s: unknown type %q", name, sc.Type)
		}
		s, err := builder(name, sc, f.withOverrides(sc.Timeout, sc.MaxRetries))
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}

// Ordered returns the primary and secondary searchers that exist in the
// built map, in query order.
func (c *Config) Ordered(built map[string]Searcher) []Searcher {
	var out []Searcher
	if s, ok := built[c.Primary]; ok {
		out = append(out, s)
	}
	if s, ok := built[c.Secondary]; ok && c.Secondary != c.Primary {
		out = append(out, s)
	}
	return out
}
