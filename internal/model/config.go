package model

import (
	"fmt"
	"time"
)

// Config holds the full pipeline configuration, assembled in the CLI layer
// from flags, environment and the config file.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Load        LoadConfig        `yaml:"load"`
	Transform   TransformConfig   `yaml:"transform"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Output      OutputConfig      `yaml:"output"`
	LLM         LLMConfig         `yaml:"llm"`
}

// StoreConfig configures the remote store client.
type StoreConfig struct {
	URL               string        `yaml:"url"`
	Key               string        `yaml:"key,omitempty"`
	Table             string        `yaml:"table"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty"`
}

// LoadConfig configures batching and retry behavior.
type LoadConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
	Backoff    time.Duration `yaml:"backoff"`
}

// TransformConfig selects the dataset profile.
type TransformConfig struct {
	Profile string `yaml:"profile"`
}

// ConcurrencyConfig bounds the raw-document parsing workers. Chunk loading
// itself is always sequential.
type ConcurrencyConfig struct {
	ParseWorkers int `yaml:"parse_workers"`
}

// CacheConfig configures read-back caching of the remote table.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir,omitempty"`
	TTL     time.Duration `yaml:"ttl"`
}

// OutputConfig controls operator-facing output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// LLMConfig configures the optional narrative summary. Disabled unless a
// provider is set.
type LLMConfig struct {
	Provider  string `yaml:"provider,omitempty"`
	Model     string `yaml:"model,omitempty"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url,omitempty"`
	MaxTokens int    `yaml:"max_tokens"`
}

// DefaultConfig returns the built-in defaults. Store URL and key have no
// default: both are required and validated before any work begins.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Table:             "telco_customer_data",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Load: LoadConfig{
			BatchSize:  200,
			MaxRetries: 2,
			Backoff:    2 * time.Second,
		},
		Transform: TransformConfig{
			Profile: "churn",
		},
		Concurrency: ConcurrencyConfig{
			ParseWorkers: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		LLM: LLMConfig{
			MaxTokens: 1000,
		},
	}
}

// ConfigError reports missing or invalid required configuration. It is fatal:
// the run aborts before any load attempt.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration that must hold before a run starts.
func (c *Config) Validate() error {
	if c.Store.URL == "" {
		return &ConfigError{Field: "store.url", Reason: "required (set DATALIFT_STORE_URL)"}
	}
	if c.Store.Key == "" {
		return &ConfigError{Field: "store.key", Reason: "required (set DATALIFT_STORE_KEY)"}
	}
	if c.Store.Table == "" {
		return &ConfigError{Field: "store.table", Reason: "required"}
	}
	if c.Load.BatchSize <= 0 {
		return &ConfigError{Field: "load.batch_size", Reason: fmt.Sprintf("must be positive, got %d", c.Load.BatchSize)}
	}
	if c.Load.MaxRetries < 0 {
		return &ConfigError{Field: "load.max_retries", Reason: fmt.Sprintf("must not be negative, got %d", c.Load.MaxRetries)}
	}
	return nil
}
