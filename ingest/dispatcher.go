package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/tabkit/bus"
	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/observability"
	"github.com/kbukum/tabkit/source"
)

// Dispatcher runs ingest requests. The bus it notifies is fixed at
// construction; concurrent dispatches never redirect each other's
// notifications.
type Dispatcher struct {
	bus     bus.Bus
	loader  *source.Loader
	metrics *observability.Metrics
	tracer  trace.Tracer
	log     *logger.Logger
	wg      sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBus sets the notification bus. Without one, notifications are dropped.
func WithBus(b bus.Bus) Option {
	return func(d *Dispatcher) { d.bus = b }
}

// WithLoader sets the source loader.
func WithLoader(l *source.Loader) Option {
	return func(d *Dispatcher) { d.loader = l }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// New creates a Dispatcher. Without options it reads local files, downloads
// with a default HTTP client, records no metrics, and drops notifications.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.Get("ingest")
	}
	if d.loader == nil {
		l, err := source.NewLoader(source.WithLogger(d.log))
		if err != nil {
			return nil, err
		}
		d.loader = l
	}
	if d.metrics == nil {
		d.metrics = observability.NopMetrics()
	}
	if d.tracer == nil {
		d.tracer = observability.Tracer("github.com/kbukum/tabkit/ingest")
	}
	return d, nil
}

// request is a validated setting ready to run.
type request struct {
	setting Setting
	plan    source.Plan
	// index is the batch position, or -1.
	index   int
	batchID string
	future  *Future
}

func (r *request) fields() map[string]interface{} {
	f := map[string]interface{}{logger.FieldSource: string(r.plan.Kind)}
	if r.index >= 0 {
		f[logger.FieldIndex] = r.index
		f[logger.FieldBatchID] = r.batchID
	}
	return f
}

// Dispatch starts one request. A misconfigured setting is reported here and
// nothing is dispatched; every later failure rejects the returned Future.
// The request keeps running if ctx is cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, s Setting, format string) (*Future, error) {
	req, err := d.prepare(s, format, -1, "")
	if err != nil {
		return nil, err
	}
	d.start(ctx, req)
	return req.future, nil
}

// DispatchBatch starts every valid setting at once. Misconfigured members
// are joined into the returned error and get nil futures; the rest run
// regardless. format is the discriminator for URL sources and applies to
// the whole batch.
func (d *Dispatcher) DispatchBatch(ctx context.Context, settings []Setting, format string) (*Batch, error) {
	b := &Batch{ID: uuid.NewString(), futures: make([]*Future, len(settings))}
	var errs []error
	reqs := make([]*request, 0, len(settings))
	for i, s := range settings {
		req, err := d.prepare(s, format, i, b.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("setting %d: %w", i, err))
			continue
		}
		b.futures[i] = req.future
		reqs = append(reqs, req)
	}
	d.log.Debug("batch dispatched", map[string]interface{}{
		logger.FieldBatchID: b.ID,
		"size":              len(settings),
		"valid":             len(reqs),
	})
	for _, req := range reqs {
		d.start(ctx, req)
	}
	return b, errors.Join(errs...)
}

// Wait blocks until every dispatched request has settled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) prepare(s Setting, format string, index int, batchID string) (*request, error) {
	s.ApplyDefaults()
	err := s.Validate()
	var plan source.Plan
	if err == nil {
		plan, err = source.Resolve(s.Input(), format)
	}
	if err != nil {
		fields := map[string]interface{}{logger.FieldError: err.Error()}
		if index >= 0 {
			fields[logger.FieldIndex] = index
			fields[logger.FieldBatchID] = batchID
		}
		d.log.Warn("invalid setting, request not dispatched", fields)
		d.metrics.RecordError(context.Background(), string(apperrors.Wrap(err).Code))
		return nil, err
	}
	return &request{setting: s, plan: plan, index: index, batchID: batchID, future: newFuture()}, nil
}

func (d *Dispatcher) start(ctx context.Context, req *request) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx, req)
	}()
}

func (d *Dispatcher) run(ctx context.Context, req *request) {
	start := time.Now()
	attrs := []attribute.KeyValue{
		attribute.String(observability.AttrSource, string(req.plan.Kind)),
		attribute.String(observability.AttrFormat, string(req.plan.Format)),
	}
	if req.index >= 0 {
		attrs = append(attrs, attribute.Int(observability.AttrIndex, req.index))
	}
	ctx, span := d.tracer.Start(ctx, observability.SpanDispatch, trace.WithAttributes(attrs...))
	defer span.End()

	records, err := d.process(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		observability.SetSpanError(ctx, err)
		d.metrics.RecordDispatch(ctx, string(req.plan.Kind), "error", elapsed)
		d.fail(ctx, req, err)
		return
	}
	observability.SetSpanAttribute(ctx, observability.AttrRecords, len(records))
	d.metrics.RecordDispatch(ctx, string(req.plan.Kind), "ok", elapsed)
	d.metrics.RecordRecords(ctx, string(req.plan.Kind), len(records))

	fields := req.fields()
	fields[logger.FieldRecords] = len(records)
	fields[logger.FieldDuration] = elapsed.Milliseconds()
	d.log.Debug("request completed", fields)

	d.deliver(ctx, req, records)
}

// fail notifies the error event and rejects the future.
func (d *Dispatcher) fail(ctx context.Context, req *request, err error) {
	derr := &DispatchError{Err: err, Setting: req.setting, Index: req.index}
	observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(derr.Code()))
	d.metrics.RecordError(ctx, string(derr.Code()))

	fields := req.fields()
	fields[logger.FieldError] = err.Error()
	fields[logger.FieldEvent] = req.setting.ErrorEvent
	d.log.Error("request failed", fields)

	d.notify(ctx, req.setting.ErrorEvent, derr)
	req.future.reject(derr)
}
