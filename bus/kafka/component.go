package kafka

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kbukum/tabkit/component"
	"github.com/kbukum/tabkit/logger"
)

// Component manages the lifecycle of a Kafka Bus.
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

// NewComponent creates a Kafka bus component for use with the component
// registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Get("bus")
	}
	return &Component{cfg: cfg, log: log}
}

// Bus returns the started bus, or nil before Start.
func (c *Component) Bus() *Bus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus
}

// Name returns the component name.
func (c *Component) Name() string { return "bus.kafka" }

// Start creates the bus.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus != nil {
		return nil
	}
	b, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("kafka start: %w", err)
	}
	c.bus = b
	return nil
}

// Stop flushes and closes the bus.
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

// Health dials the first broker and asks for cluster metadata.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusUnhealthy}
	if c.Bus() == nil {
		h.Message = "kafka bus not started"
		return h
	}
	dialer, err := newDialer(&c.cfg)
	if err != nil {
		h.Message = fmt.Sprintf("dialer: %v", err)
		return h
	}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Brokers[0])
	if err != nil {
		h.Message = fmt.Sprintf("broker unreachable: %v", err)
		return h
	}
	defer conn.Close() //nolint:errcheck // health check connection

	if _, err := conn.Brokers(); err != nil {
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("broker metadata: %v", err)
		return h
	}
	h.Status = component.StatusHealthy
	return h
}

// Describe returns infrastructure summary info for the startup display.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Kafka bus",
		Type:    "bus",
		Details: fmt.Sprintf("brokers=%s topic=%s", strings.Join(c.cfg.Brokers, ","), c.cfg.Topic),
	}
}
