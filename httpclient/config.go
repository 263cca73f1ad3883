package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/tabkit/resilience"
	"github.com/kbukum/tabkit/util"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = "100MB"
	defaultUserAgent   = "tabkit"
)

// Config configures the HTTP client.
type Config struct {
	// Timeout bounds a single attempt, including reading the body.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// MaxBodySize caps downloaded bodies, e.g. "50MB".
	MaxBodySize string `yaml:"max_body_size" mapstructure:"max_body_size"`

	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Retry configures retry behavior. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = defaultMaxBodySize
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Retry != nil && c.Retry.RetryIf == nil {
		c.Retry.RetryIf = IsRetryable
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.maxBytes() <= 0 {
		return fmt.Errorf("httpclient: invalid max_body_size %q", c.MaxBodySize)
	}
	return c.Auth.Validate()
}

func (c *Config) maxBytes() int64 {
	return util.ParseSize(c.MaxBodySize, 0)
}

// DefaultRetryConfig returns a retry config that only retries errors the
// client classifies as retryable.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}
