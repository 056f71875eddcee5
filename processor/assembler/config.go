package assembler

import (
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
)

// Config holds configuration for the assembler processor component.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`

	// StreamName is the JetStream stream for assembly requests.
	StreamName string `json:"stream_name" schema:"type:string,description:JetStream stream name,category:basic,default:VEHICLES"`

	// ConsumerName is the durable consumer name.
	ConsumerName string `json:"consumer_name" schema:"type:string,description:Durable consumer name,category:basic,default:assembler"`

	// RecordSubject is the subject prefix for assembled records.
	RecordSubject string `json:"record_subject" schema:"type:string,description:Subject prefix for assembled records,category:basic,default:vehicle.assembled"`

	// FetchTimeout is the maximum time for fetching one detail page.
	FetchTimeout string `json:"fetch_timeout" schema:"type:string,description:HTTP fetch timeout,category:advanced,default:30s"`

	// FetchConcurrency bounds concurrent page fetches.
	FetchConcurrency int `json:"fetch_concurrency" schema:"type:int,description:Maximum concurrent page fetches,category:advanced,default:8"`

	// Retries is how many times a transient fetch failure is retried.
	Retries int `json:"retries" schema:"type:int,description:Retry count for transient fetch failures,category:advanced,default:3"`

	// RetryBackoff is the initial backoff between retries.
	RetryBackoff string `json:"retry_backoff" schema:"type:string,description:Initial retry backoff,category:advanced,default:1s"`

	// CacheTTL is how long fetched pages are reused. Empty disables caching.
	CacheTTL string `json:"cache_ttl" schema:"type:string,description:Page cache TTL,category:advanced,default:24h"`

	// MaxContentSize is the maximum response body size in bytes.
	MaxContentSize int64 `json:"max_content_size" schema:"type:int,description:Maximum content size in bytes,category:advanced,default:10485760"`

	// UserAgent is the User-Agent header for HTTP requests.
	UserAgent string `json:"user_agent" schema:"type:string,description:HTTP User-Agent header,category:advanced,default:sawari-assembler/1.0"`

	// EntityDeadline bounds how long one vehicle may stay pending before
	// its record is force-completed with placeholders.
	EntityDeadline string `json:"entity_deadline" schema:"type:string,description:Per-vehicle assembly deadline,category:advanced,default:2m"`

	// ExcludeTabs lists navigation tab identifiers that are never fetched.
	ExcludeTabs []string `json:"exclude_tabs" schema:"type:array,description:Navigation tabs to skip,category:advanced,default:[model,compare]"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return fmt.Errorf("stream_name is required")
	}
	if c.ConsumerName == "" {
		return fmt.Errorf("consumer_name is required")
	}
	if c.RecordSubject == "" {
		return fmt.Errorf("record_subject is required")
	}
	if c.FetchConcurrency < 0 {
		return fmt.Errorf("fetch_concurrency must be non-negative")
	}
	if c.MaxContentSize < 0 {
		return fmt.Errorf("max_content_size must be non-negative")
	}
	if c.FetchTimeout != "" {
		if _, err := time.ParseDuration(c.FetchTimeout); err != nil {
			return fmt.Errorf("invalid fetch_timeout format: %w", err)
		}
	}
	if c.RetryBackoff != "" {
		if _, err := time.ParseDuration(c.RetryBackoff); err != nil {
			return fmt.Errorf("invalid retry_backoff format: %w", err)
		}
	}
	if c.CacheTTL != "" {
		if _, err := time.ParseDuration(c.CacheTTL); err != nil {
			return fmt.Errorf("invalid cache_ttl format: %w", err)
		}
	}
	if c.EntityDeadline != "" {
		if _, err := time.ParseDuration(c.EntityDeadline); err != nil {
			return fmt.Errorf("invalid entity_deadline format: %w", err)
		}
	}
	return nil
}

// parseDurationOrDefault parses a duration string and returns the default if empty or invalid.
func parseDurationOrDefault(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// GetFetchTimeout returns the fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	return parseDurationOrDefault(c.FetchTimeout, 30*time.Second)
}

// GetRetryBackoff returns the initial retry backoff as a duration.
func (c *Config) GetRetryBackoff() time.Duration {
	return parseDurationOrDefault(c.RetryBackoff, time.Second)
}

// GetCacheTTL returns the page cache TTL as a duration.
func (c *Config) GetCacheTTL() time.Duration {
	return parseDurationOrDefault(c.CacheTTL, 24*time.Hour)
}

// GetEntityDeadline returns the per-vehicle assembly deadline.
func (c *Config) GetEntityDeadline() time.Duration {
	return parseDurationOrDefault(c.EntityDeadline, 2*time.Minute)
}

// GetMaxContentSize returns the max content size with default.
func (c *Config) GetMaxContentSize() int64 {
	if c.MaxContentSize <= 0 {
		return 10 * 1024 * 1024 // 10MB default
	}
	return c.MaxContentSize
}

// GetUserAgent returns the user agent with default.
func (c *Config) GetUserAgent() string {
	if c.UserAgent == "" {
		return "sawari-assembler/1.0"
	}
	return c.UserAgent
}

// GetExcludeTabs returns the excluded tab identifiers with defaults.
func (c *Config) GetExcludeTabs() []string {
	if len(c.ExcludeTabs) == 0 {
		return []string{"model", "compare"}
	}
	return c.ExcludeTabs
}

// DefaultConfig returns default configuration for the assembler processor.
func DefaultConfig() Config {
	inputDefs := []component.PortDefinition{
		{
			Name:        "assemble.in",
			Type:        "jetstream",
			Subject:     "vehicle.assemble.>",
			StreamName:  "VEHICLES",
			Required:    true,
			Description: "Vehicle assembly requests",
		},
	}

	outputDefs := []component.PortDefinition{
		{
			Name:        "record.out",
			Type:        "jetstream",
			Subject:     "vehicle.assembled.>",
			StreamName:  "VEHICLES",
			Required:    true,
			Description: "Assembled vehicle records",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Inputs:  inputDefs,
			Outputs: outputDefs,
		},
		StreamName:       "VEHICLES",
		ConsumerName:     "assembler",
		RecordSubject:    "vehicle.assembled",
		FetchTimeout:     "30s",
		FetchConcurrency: 8,
		Retries:          3,
		RetryBackoff:     "1s",
		CacheTTL:         "24h",
		MaxContentSize:   10 * 1024 * 1024, // 10MB
		UserAgent:        "sawari-assembler/1.0",
		EntityDeadline:   "2m",
		ExcludeTabs:      []string{"model", "compare"},
	}
}
