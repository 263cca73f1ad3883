package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/tabkit/component"
	"github.com/kbukum/tabkit/logger"
)

// Component manages the lifecycle of a Redis Bus.
type Component struct {
	cfg Config
	log *logger.Logger
	mu  sync.Mutex
	bus *Bus
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a Redis bus component for use with the component
// registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log}
}

// Bus returns the started bus, or nil before Start.
func (c *Component) Bus() *Bus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus
}

// Name returns the component name.
func (c *Component) Name() string { return "bus.redis" }

// Start connects and verifies the server answers.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus != nil {
		return nil
	}
	b, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("redis start: %w", err)
	}
	if err := b.Ping(ctx); err != nil {
		_ = b.Close()
		return fmt.Errorf("redis start ping: %w", err)
	}
	c.bus = b
	return nil
}

// Stop closes the connection.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus == nil {
		return nil
	}
	err := c.bus.Close()
	c.bus = nil
	return err
}

// Health pings the server.
func (c *Component) Health(ctx context.Context) component.Health {
	b := c.Bus()
	if b == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "redis bus not started"}
	}
	if err := b.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup display.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis bus",
		Type:    "bus",
		Details: fmt.Sprintf("%s db=%d prefix=%s", c.cfg.Addr, c.cfg.DB, c.cfg.ChannelPrefix),
	}
}
