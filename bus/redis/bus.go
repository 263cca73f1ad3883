// Package redis publishes bus events over Redis pub/sub with go-redis. An
// event named "data" is published as JSON on the channel
// ChannelPrefix+"data".
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/tabkit/bus"
	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/logger"
)

// Bus implements bus.Bus on Redis pub/sub.
type Bus struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
	owned  bool
	mu     sync.Mutex
	closed bool
}

// New validates cfg and connects a go-redis client.
func New(cfg Config, log *logger.Logger) (*Bus, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis bus config: %w", err)
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  duration(cfg.DialTimeout),
		ReadTimeout:  duration(cfg.ReadTimeout),
		WriteTimeout: duration(cfg.WriteTimeout),
	})
	b := NewWithClient(rdb, cfg.ChannelPrefix, log)
	b.owned = true
	b.log.Info("Redis bus created", map[string]interface{}{
		"addr":   cfg.Addr,
		"db":     cfg.DB,
		"prefix": cfg.ChannelPrefix,
	})
	return b, nil
}

// NewWithClient wraps an existing client. Close leaves the client open.
func NewWithClient(rdb goredis.UniversalClient, prefix string, log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Get("bus")
	}
	return &Bus{rdb: rdb, prefix: prefix, log: log.WithComponent("bus.redis")}
}

// Channel returns the pub/sub channel for an event name.
func (b *Bus) Channel(name string) string {
	return b.prefix + name
}

// Emit publishes the JSON-encoded event. Having no subscribers is not an
// error.
func (b *Bus) Emit(ctx context.Context, name string, args ...any) error {
	ev := bus.NewEvent(name, args...)
	payload, err := bus.Encode(ev)
	if err != nil {
		return apperrors.PublishFailed("redis", fmt.Errorf("encode event: %w", err))
	}
	receivers, err := b.rdb.Publish(ctx, b.Channel(name), payload).Result()
	if err != nil {
		return apperrors.PublishFailed("redis", err).WithDetail("channel", b.Channel(name))
	}
	b.log.Debug("event published", map[string]interface{}{
		logger.FieldEvent: name,
		"receivers":       receivers,
		logger.FieldBytes: len(payload),
	})
	return nil
}

// Subscribe listens on every channel matching prefix+pattern (Redis glob
// syntax) and decodes messages into events. The returned channel closes when
// ctx is done. Messages that are not events are logged and skipped.
func (b *Bus) Subscribe(ctx context.Context, pattern string) (<-chan bus.Event, error) {
	ps := b.rdb.PSubscribe(ctx, b.Channel(pattern))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", b.Channel(pattern), err)
	}

	out := make(chan bus.Event, 64)
	go func() {
		defer close(out)
		defer ps.Close() //nolint:errcheck // subscription teardown
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var ev bus.Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("skipping malformed event", map[string]interface{}{
						"channel":          m.Channel,
						logger.FieldError: err.Error(),
					})
					continue
				}
				if ev.Name == "" {
					ev.Name = strings.TrimPrefix(m.Channel, b.prefix)
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping verifies the Redis connection is alive.
func (b *Bus) Ping(ctx context.Context) error {
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the client if the bus created it. Safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || !b.owned {
		b.closed = true
		return nil
	}
	b.closed = true
	b.log.Info("Closing Redis bus")
	return b.rdb.Close()
}

var _ bus.Bus = (*Bus)(nil)
