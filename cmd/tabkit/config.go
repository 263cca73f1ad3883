package main

import (
	"errors"
	"fmt"

	"github.com/kbukum/tabkit/bus/kafka"
	"github.com/kbukum/tabkit/bus/redis"
	"github.com/kbukum/tabkit/config"
	"github.com/kbukum/tabkit/httpclient"
	"github.com/kbukum/tabkit/observability"
	"github.com/kbukum/tabkit/storage"
	"github.com/kbukum/tabkit/validation"
	"github.com/kbukum/tabkit/version"
)

// Bus backends.
const (
	BackendMemory = "memory"
	BackendKafka  = "kafka"
	BackendRedis  = "redis"
)

// Config is the tabkit binary's configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Ingest        IngestConfig         `yaml:"ingest" mapstructure:"ingest"`
	HTTP          httpclient.Config    `yaml:"http" mapstructure:"http"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Bus           BusConfig            `yaml:"bus" mapstructure:"bus"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// IngestConfig holds defaults applied to every job.
type IngestConfig struct {
	// Format is the URL discriminator used when neither the job nor the
	// command line names one.
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=csv json yaml yml"`
}

// BusConfig selects where notifications go besides the in-process emitter.
type BusConfig struct {
	Backend string       `yaml:"backend" mapstructure:"backend" validate:"oneof=memory kafka redis"`
	Kafka   kafka.Config `yaml:"kafka" mapstructure:"kafka"`
	Redis   redis.Config `yaml:"redis" mapstructure:"redis"`
}

// ApplyDefaults fills zero-valued fields of every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.HTTP.ApplyDefaults()
	c.Storage.ApplyDefaults()
	if c.Bus.Backend == "" {
		c.Bus.Backend = BackendMemory
	}
	c.Bus.Kafka.ApplyDefaults()
	c.Bus.Redis.ApplyDefaults()
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate checks struct tags and then each section's own rules. Only the
// selected bus backend is validated.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	var errs []error
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Bus.Backend {
	case BackendKafka:
		if err := c.Bus.Kafka.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("bus.kafka: %w", err))
		}
	case BackendRedis:
		if err := c.Bus.Redis.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("bus.redis: %w", err))
		}
	}
	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// loadConfig reads configuration from path, or from the standard locations
// when path is empty.
func loadConfig(path string) (*Config, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &Config{}
	if err := config.LoadConfig("tabkit", cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
