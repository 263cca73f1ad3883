package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/tabkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string
	Insecure bool
	// Interval is the metric export interval. Zero keeps the SDK default.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the ingest instruments.
type Metrics struct {
	dispatchTotal    metric.Int64Counter
	dispatchDuration metric.Float64Histogram
	recordsTotal     metric.Int64Counter
	notifyDropped    metric.Int64Counter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates the ingest instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	dispatchTotal, err := meter.Int64Counter("ingest.dispatch.total",
		metric.WithDescription("Completed ingest requests by source and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.dispatch.total counter: %w", err)
	}

	dispatchDuration, err := meter.Float64Histogram("ingest.dispatch.duration",
		metric.WithDescription("Duration of ingest requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.dispatch.duration histogram: %w", err)
	}

	recordsTotal, err := meter.Int64Counter("ingest.records.total",
		metric.WithDescription("Records delivered after filtering and formatting"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.records.total counter: %w", err)
	}

	notifyDropped, err := meter.Int64Counter("ingest.notify.dropped",
		metric.WithDescription("Notifications dropped because no bus was attached"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.notify.dropped counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("ingest.error.total",
		metric.WithDescription("Rejected ingest requests by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.error.total counter: %w", err)
	}

	return &Metrics{
		dispatchTotal:    dispatchTotal,
		dispatchDuration: dispatchDuration,
		recordsTotal:     recordsTotal,
		notifyDropped:    notifyDropped,
		errorTotal:       errorTotal,
	}, nil
}

// NopMetrics returns instruments backed by a no-op meter.
func NopMetrics() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider().Meter(defaultTracerName))
	if err != nil {
		// The no-op meter never fails to create instruments.
		panic(err)
	}
	return m
}

// RecordDispatch records one finished request.
func (m *Metrics) RecordDispatch(ctx context.Context, source, status string, duration time.Duration) {
	m.dispatchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	))
	m.dispatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("source", source),
	))
}

// RecordRecords adds n delivered records.
func (m *Metrics) RecordRecords(ctx context.Context, source string, n int) {
	m.recordsTotal.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("source", source),
	))
}

// RecordDropped counts a notification that had no bus to go to.
func (m *Metrics) RecordDropped(ctx context.Context, event string) {
	m.notifyDropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
	))
}

// RecordError counts a rejection by error code.
func (m *Metrics) RecordError(ctx context.Context, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
	))
}
