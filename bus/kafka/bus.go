// Package kafka publishes bus events to a Kafka topic with
// segmentio/kafka-go. Each event is one JSON message keyed by the event
// name, with the event ID and name repeated as headers.
package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/tabkit/bus"
	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/resilience"
)

// Message header keys.
const (
	HeaderEventID     = "event-id"
	HeaderEventName   = "event-name"
	HeaderContentType = "content-type"
)

// messageWriter is the subset of *kafkago.Writer used by the bus.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Stats() kafkago.WriterStats
	Close() error
}

// Bus implements bus.Bus on a Kafka topic.
type Bus struct {
	writer messageWriter
	cfg    Config
	retry  resilience.RetryConfig
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// New validates cfg and creates a Bus with a kafka-go Writer. Connections are
// opened on the first Emit.
func New(cfg Config, log *logger.Logger) (*Bus, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka bus config: %w", err)
	}
	transport, err := newTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka bus transport: %w", err)
	}
	if log == nil {
		log = logger.Get("bus")
	}
	log = log.WithComponent("bus.kafka")

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: duration(cfg.BatchTimeout),
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  compressionCodecs[cfg.Compression],
		WriteTimeout: duration(cfg.WriteTimeout),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error("writer: "+fmt.Sprintf(msg, args...))
		}),
	}
	log.Info("Kafka bus initialized", map[string]interface{}{
		"brokers":     cfg.Brokers,
		"topic":       cfg.Topic,
		"compression": cfg.Compression,
	})
	return newWithWriter(w, cfg, log), nil
}

func newWithWriter(w messageWriter, cfg Config, log *logger.Logger) *Bus {
	return &Bus{
		writer: w,
		cfg:    cfg,
		retry: resilience.RetryConfig{
			MaxAttempts:    cfg.Retries,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			RetryIf:        IsRetryableError,
		},
		log: log,
	}
}

// Emit encodes the event and writes it to the configured topic, retrying
// transient broker failures.
func (b *Bus) Emit(ctx context.Context, name string, args ...any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return apperrors.PublishFailed("kafka", fmt.Errorf("bus is closed"))
	}

	ev := bus.NewEvent(name, args...)
	value, err := bus.Encode(ev)
	if err != nil {
		return apperrors.PublishFailed("kafka", fmt.Errorf("encode event: %w", err))
	}
	msg := kafkago.Message{
		Topic: b.cfg.Topic,
		Key:   []byte(name),
		Value: value,
		Time:  ev.Time,
		Headers: []kafkago.Header{
			{Key: HeaderEventID, Value: []byte(ev.ID)},
			{Key: HeaderEventName, Value: []byte(name)},
			{Key: HeaderContentType, Value: []byte("application/json")},
		},
	}

	_, err = resilience.Retry(ctx, b.retry, func() (struct{}, error) {
		return struct{}{}, b.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return apperrors.PublishFailed("kafka", err).WithDetail("topic", b.cfg.Topic)
	}
	b.log.Debug("event published", map[string]interface{}{
		logger.FieldEvent: name,
		"topic":           b.cfg.Topic,
		logger.FieldBytes: len(value),
	})
	return nil
}

// Stats returns writer statistics.
func (b *Bus) Stats() kafkago.WriterStats {
	return b.writer.Stats()
}

// Close flushes pending messages and closes the writer. Safe to call more
// than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.log.Info("Kafka bus closing")
	return b.writer.Close()
}

var _ bus.Bus = (*Bus)(nil)
