// Package config provides configuration loading and management for sawari.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete sawari configuration
type Config struct {
	Crawl CrawlConfig `yaml:"crawl"`
	Tabs  TabsConfig  `yaml:"tabs"`
	NATS  NATSConfig  `yaml:"nats"`
	Sink  SinkConfig  `yaml:"sink"`
	Watch WatchConfig `yaml:"watch"`
}

// CrawlConfig configures fetching and assembly concurrency.
// Durations are strings ("30s", "24h") so they read naturally in YAML.
type CrawlConfig struct {
	// FetchConcurrency bounds concurrent page fetches across all entities
	FetchConcurrency int `yaml:"fetch_concurrency"`
	// EntityConcurrency bounds how many entities are assembled at once
	EntityConcurrency int `yaml:"entity_concurrency"`
	// FetchTimeout is the per-request HTTP timeout
	FetchTimeout string `yaml:"fetch_timeout"`
	// Retries is how many times a transient fetch failure is retried
	Retries int `yaml:"retries"`
	// RetryBackoff is the initial backoff between retries (doubles per attempt)
	RetryBackoff string `yaml:"retry_backoff"`
	// CacheTTL is how long fetched pages are reused (empty disables caching)
	CacheTTL string `yaml:"cache_ttl"`
	// UserAgent is sent on every request
	UserAgent string `yaml:"user_agent"`
	// MaxContentSize caps the response body size in bytes
	MaxContentSize int64 `yaml:"max_content_size"`
	// EntityDeadline bounds how long one entity may stay pending before
	// force-completion
	EntityDeadline string `yaml:"entity_deadline"`
}

// TabsConfig configures navigation discovery on detail pages.
type TabsConfig struct {
	// NavSelector locates the tab navigation links (empty = built-in default)
	NavSelector string `yaml:"nav_selector"`
	// Exclude lists tab identifiers that are never fetched
	Exclude []string `yaml:"exclude"`
	// Keys maps tab identifiers to field keys where they differ
	Keys map[string]string `yaml:"keys"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URLs are the NATS server URLs
	URLs []string `yaml:"urls"`
	// Name identifies this client on the server
	Name string `yaml:"name"`
}

// SinkConfig configures where assembled records go.
type SinkConfig struct {
	// JSONLPath is the output file for crawl runs
	JSONLPath string `yaml:"jsonl_path"`
	// Subject is the JetStream subject prefix for published records
	Subject string `yaml:"subject"`
}

// WatchConfig configures seed file watching.
type WatchConfig struct {
	// Root is the directory watched for seed files
	Root string `yaml:"root"`
	// Pattern matches seed files relative to Root (supports **)
	Pattern string `yaml:"pattern"`
	// Debounce is how long to wait for more changes before re-crawling
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			FetchConcurrency:  8,
			EntityConcurrency: 4,
			FetchTimeout:      "30s",
			Retries:           3,
			RetryBackoff:      "1s",
			CacheTTL:          "24h",
			UserAgent:         "sawari-assembler/1.0",
			MaxContentSize:    10 * 1024 * 1024,
			EntityDeadline:    "2m",
		},
		Tabs: TabsConfig{
			NavSelector: "", // Built-in default
			Exclude:     []string{"model", "compare"},
			Keys: map[string]string{
				"specs": "specifications",
				"range": "mileage",
			},
		},
		NATS: NATSConfig{
			URLs: []string{"nats://localhost:4222"},
			Name: "sawari",
		},
		Sink: SinkConfig{
			JSONLPath: "cars_complete_data.jsonl",
			Subject:   "vehicle.assembled",
		},
		Watch: WatchConfig{
			Root:     "seeds",
			Pattern:  "**/*.json",
			Debounce: "500ms",
		},
	}
}

// GetFetchTimeout returns the fetch timeout as a duration.
func (c *CrawlConfig) GetFetchTimeout() time.Duration {
	return parseDuration(c.FetchTimeout, 30*time.Second)
}

// GetRetryBackoff returns the initial retry backoff as a duration.
func (c *CrawlConfig) GetRetryBackoff() time.Duration {
	return parseDuration(c.RetryBackoff, time.Second)
}

// GetCacheTTL returns the page cache TTL as a duration. Zero disables caching.
func (c *CrawlConfig) GetCacheTTL() time.Duration {
	return parseDuration(c.CacheTTL, 0)
}

// GetEntityDeadline returns the per-entity assembly deadline.
func (c *CrawlConfig) GetEntityDeadline() time.Duration {
	return parseDuration(c.EntityDeadline, 2*time.Minute)
}

// GetDebounce returns the watch debounce as a duration.
func (c *WatchConfig) GetDebounce() time.Duration {
	return parseDuration(c.Debounce, 500*time.Millisecond)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Crawl.FetchConcurrency < 1 {
		return fmt.Errorf("crawl.fetch_concurrency must be at least 1")
	}
	if c.Crawl.EntityConcurrency < 1 {
		return fmt.Errorf("crawl.entity_concurrency must be at least 1")
	}
	if c.Crawl.Retries < 0 {
		return fmt.Errorf("crawl.retries must not be negative")
	}
	if c.Crawl.FetchTimeout != "" {
		if _, err := time.ParseDuration(c.Crawl.FetchTimeout); err != nil {
			return fmt.Errorf("crawl.fetch_timeout is not a valid duration: %w", err)
		}
	}
	if c.Crawl.EntityDeadline != "" {
		if _, err := time.ParseDuration(c.Crawl.EntityDeadline); err != nil {
			return fmt.Errorf("crawl.entity_deadline is not a valid duration: %w", err)
		}
	}
	if c.Sink.JSONLPath == "" && c.Sink.Subject == "" {
		return fmt.Errorf("at least one of sink.jsonl_path and sink.subject is required")
	}
	if len(c.NATS.URLs) == 0 && c.Sink.Subject != "" {
		return fmt.Errorf("nats.urls is required when sink.subject is set")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Crawl
	if other.Crawl.FetchConcurrency != 0 {
		c.Crawl.FetchConcurrency = other.Crawl.FetchConcurrency
	}
	if other.Crawl.EntityConcurrency != 0 {
		c.Crawl.EntityConcurrency = other.Crawl.EntityConcurrency
	}
	if other.Crawl.FetchTimeout != "" {
		c.Crawl.FetchTimeout = other.Crawl.FetchTimeout
	}
	if other.Crawl.Retries != 0 {
		c.Crawl.Retries = other.Crawl.Retries
	}
	if other.Crawl.RetryBackoff != "" {
		c.Crawl.RetryBackoff = other.Crawl.RetryBackoff
	}
	if other.Crawl.CacheTTL != "" {
		c.Crawl.CacheTTL = other.Crawl.CacheTTL
	}
	if other.Crawl.UserAgent != "" {
		c.Crawl.UserAgent = other.Crawl.UserAgent
	}
	if other.Crawl.MaxContentSize != 0 {
		c.Crawl.MaxContentSize = other.Crawl.MaxContentSize
	}
	if other.Crawl.EntityDeadline != "" {
		c.Crawl.EntityDeadline = other.Crawl.EntityDeadline
	}

	// Tabs
	if other.Tabs.NavSelector != "" {
		c.Tabs.NavSelector = other.Tabs.NavSelector
	}
	if len(other.Tabs.Exclude) > 0 {
		c.Tabs.Exclude = other.Tabs.Exclude
	}
	if len(other.Tabs.Keys) > 0 {
		c.Tabs.Keys = other.Tabs.Keys
	}

	// NATS
	if len(other.NATS.URLs) > 0 {
		c.NATS.URLs = other.NATS.URLs
	}
	if other.NATS.Name != "" {
		c.NATS.Name = other.NATS.Name
	}

	// Sink
	if other.Sink.JSONLPath != "" {
		c.Sink.JSONLPath = other.Sink.JSONLPath
	}
	if other.Sink.Subject != "" {
		c.Sink.Subject = other.Sink.Subject
	}

	// Watch
	if other.Watch.Root != "" {
		c.Watch.Root = other.Watch.Root
	}
	if other.Watch.Pattern != "" {
		c.Watch.Pattern = other.Watch.Pattern
	}
	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
