package resolver

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTopK caps the candidate list returned by a search.
	DefaultTopK = 10
	// DefaultEarlyExitScore stops the variant loop once a domestic
	// candidate scores at least this high.
	DefaultEarlyExitScore = 0.92
	// DefaultAcceptScore is the unconditional acceptance threshold.
	DefaultAcceptScore = 0.90
	// DefaultGenericAcceptScore applies when the input name is generic.
	DefaultGenericAcceptScore = 0.96
	// DefaultLocalAcceptScore short-circuits provider calls when the
	// local reference index already produced a strong domestic match.
	DefaultLocalAcceptScore = 0.90
	// DefaultBatchWorkers bounds concurrent resolutions in ResolveMany.
	DefaultBatchWorkers = 8
	// DefaultMemoCapacity bounds the in-process search memo.
	DefaultMemoCapacity = 4096

	defaultSecondPassMaxQueries = 6
	defaultMemoExpire           = time.Hour
)

// SecondPassConfig controls the refinement pass that re-queries providers
// when the first pass ended on a weak or foreign-listed top candidate.
type SecondPassConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxQueries int  `yaml:"maxQueries"`
}

// Config carries the engine knobs. The zero value is not usable; call
// DefaultConfig and override fields, or load from yaml.
type Config struct {
	PreferDomestic bool `yaml:"preferDomestic"`
	PreferOTC      bool `yaml:"preferOTC"`

	UseLocalMaps bool `yaml:"useLocalMaps"`
	LocalFirst   bool `yaml:"localFirst"`

	MaxVariants        int     `yaml:"maxVariants"`
	VariantConcurrency int     `yaml:"variantConcurrency"`
	TopK               int     `yaml:"topK"`
	EarlyExitScore     float64 `yaml:"earlyExitScore"`
	AcceptScore        float64 `yaml:"acceptScore"`
	GenericAcceptScore float64 `yaml:"genericAcceptScore"`
	LocalAcceptScore   float64 `yaml:"localAcceptScore"`

	ParallelProviders bool `yaml:"parallelProviders"`
	BatchWorkers      int  `yaml:"batchWorkers"`
	MemoCapacity      int  `yaml:"memoCapacity"`

	SecondPass SecondPassConfig `yaml:"secondPass"`

	// CachePath points at the durable resolution cache file. Empty
	// disables persistence.
	CachePath  string `yaml:"cachePath"`
	CacheRead  bool   `yaml:"cacheRead"`
	CacheWrite bool   `yaml:"cacheWrite"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PreferDomestic:     true,
		PreferOTC:          false,
		UseLocalMaps:       true,
		LocalFirst:         true,
		MaxVariants:        0, // 0 means match.DefaultMaxVariants
		TopK:               DefaultTopK,
		EarlyExitScore:     DefaultEarlyExitScore,
		AcceptScore:        DefaultAcceptScore,
		GenericAcceptScore: DefaultGenericAcceptScore,
		LocalAcceptScore:   DefaultLocalAcceptScore,
		ParallelProviders:  true,
		BatchWorkers:       DefaultBatchWorkers,
		MemoCapacity:       DefaultMemoCapacity,
		SecondPass: SecondPassConfig{
			Enabled:    true,
			MaxQueries: defaultSecondPassMaxQueries,
		},
		CacheRead:  true,
		CacheWrite: true,
	}
}

func (c *Config) withDefaults() {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.EarlyExitScore <= 0 {
		c.EarlyExitScore = DefaultEarlyExitScore
	}
	if c.AcceptScore <= 0 {
		c.AcceptScore = DefaultAcceptScore
	}
	if c.GenericAcceptScore <= 0 {
		c.GenericAcceptScore = DefaultGenericAcceptScore
	}
	if c.LocalAcceptScore <= 0 {
		c.LocalAcceptScore = DefaultLocalAcceptScore
	}
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = DefaultBatchWorkers
	}
	if c.MemoCapacity <= 0 {
		c.MemoCapacity = DefaultMemoCapacity
	}
	if c.SecondPass.MaxQueries <= 0 {
		c.SecondPass.MaxQueries = defaultSecondPassMaxQueries
	}
}

// LoadConfig reads a resolver yaml file. Missing file returns defaults.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("resolver: open config %s: %w", path, err)
	}
	defer f.Close()
	return LoadConfigFromReader(f)
}

// LoadConfigFromReader decodes a resolver config from yaml.
func LoadConfigFromReader(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			cfg.withDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("resolver: decode config: %w", err)
	}
	cfg.withDefaults()
	return cfg, nil
}
