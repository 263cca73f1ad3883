package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/tabkit/component"
)

// RedisComponent is an in-memory Redis server backed by miniredis.
type RedisComponent struct {
	mini    *miniredis.Miniredis
	client  *goredis.Client
	started bool
	mu      sync.RWMutex
}

var _ TestComponent = (*RedisComponent)(nil)

// NewRedisComponent creates a stopped in-memory Redis component.
func NewRedisComponent() *RedisComponent {
	return &RedisComponent{}
}

// Client returns a go-redis client connected to the server, or nil if not
// started.
func (c *RedisComponent) Client() *goredis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Addr returns the server address, or "" if not started.
func (c *RedisComponent) Addr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.mini == nil {
		return ""
	}
	return c.mini.Addr()
}

// Name returns the component name.
func (c *RedisComponent) Name() string { return "redis-test" }

// Start launches the in-memory Redis server.
func (c *RedisComponent) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("component already started")
	}
	mini, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start miniredis: %w", err)
	}
	c.mini = mini
	c.client = goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	c.started = true
	return nil
}

// Stop shuts down the in-memory Redis server.
func (c *RedisComponent) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	_ = c.client.Close()
	c.mini.Close()
	c.client, c.mini = nil, nil
	c.started = false
	return nil
}

// Health returns the health status.
func (c *RedisComponent) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset flushes all keys.
func (c *RedisComponent) Reset(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.mini.FlushAll()
	return nil
}

// Snapshot returns a key to value map of all string keys.
func (c *RedisComponent) Snapshot(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return nil, fmt.Errorf("component not started")
	}
	snapshot := make(map[string]string)
	for _, key := range c.mini.Keys() {
		if val, err := c.mini.Get(key); err == nil {
			snapshot[key] = val
		}
	}
	return snapshot, nil
}

// Restore replaces all keys with a previously captured snapshot.
func (c *RedisComponent) Restore(_ context.Context, snap interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return fmt.Errorf("component not started")
	}
	snapshot, ok := snap.(map[string]string)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string]string, got %T", snap)
	}
	c.mini.FlushAll()
	for key, val := range snapshot {
		if err := c.mini.Set(key, val); err != nil {
			return fmt.Errorf("failed to restore key %q: %w", key, err)
		}
	}
	return nil
}
