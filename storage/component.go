package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/tabkit/component"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/util"
)

// Component wraps Storage and implements component.Component for lifecycle
// management.
type Component struct {
	storage Storage
	cfg     Config
	log     *logger.Logger
}

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: log.WithComponent("storage"),
	}
}

// Storage returns the underlying Storage, or nil if not started.
func (c *Component) Storage() Storage {
	return c.storage
}

// MaxBytes returns the configured per-file read limit.
func (c *Component) MaxBytes() int64 {
	return c.cfg.MaxBytes()
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start initializes the storage backend.
func (c *Component) Start(_ context.Context) error {
	s, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.storage = s
	return nil
}

// Stop releases the backend.
func (c *Component) Stop(_ context.Context) error {
	c.storage = nil
	return nil
}

// Health returns the current health status of the storage component.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.storage == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "storage not initialized",
		}
	}
	if _, err := c.storage.Exists(ctx, ".health"); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusDegraded,
			Message: fmt.Sprintf("health check failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns a one-line summary for startup output.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s max=%s", c.cfg.Provider, c.cfg.MaxFileSize)
	if c.cfg.Provider == ProviderS3 {
		details += fmt.Sprintf(" bucket=%s", c.cfg.Bucket)
		if c.cfg.AccessKey != "" {
			details += " key=" + util.MaskSecret(c.cfg.AccessKey, 4)
		}
	}
	return component.Description{
		Name:    "Storage",
		Type:    "storage",
		Details: details,
	}
}
