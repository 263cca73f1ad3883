package ingest

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/observability"
	"github.com/kbukum/tabkit/pipeline"
	"github.com/kbukum/tabkit/record"
	"github.com/kbukum/tabkit/source"
)

// process loads the request's raw records and runs them through the
// completion stages: filter, format, after hook.
func (d *Dispatcher) process(ctx context.Context, req *request) (records []record.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Internal(fmt.Errorf("panic: %v", r))
		}
	}()

	s := req.setting
	loadCtx, loadSpan := d.tracer.Start(ctx, observability.SpanLoad)
	raw, err := d.loader.Load(loadCtx, req.plan, source.Request{
		Input:     s.Input(),
		Encoding:  s.Encoding,
		Header:    s.HasHeader(),
		Delimiter: s.Delimiter,
		Comment:   s.Comment,
		Before:    s.Before,
	})
	observability.SetSpanError(loadCtx, err)
	loadSpan.End()
	if err != nil {
		return nil, err
	}

	completeCtx, completeSpan := d.tracer.Start(ctx, observability.SpanComplete,
		trace.WithAttributes(attribute.Int(observability.AttrRecords, len(raw))))
	defer completeSpan.End()
	records, err = complete(completeCtx, raw, s)
	observability.SetSpanError(completeCtx, err)
	return records, err
}

// complete filters and formats raw records and applies the After hook.
func complete(ctx context.Context, raw []record.Record, s Setting) ([]record.Record, error) {
	p := pipeline.FromSlice(raw)
	if s.Filter != nil {
		p = pipeline.Filter(p, s.Filter.Matcher(s.Format.AllowSpace))
	}
	formatter := record.NewFormatter(s.Format)
	p = pipeline.Map(p, func(_ context.Context, r record.Record) (record.Record, error) {
		return formatter.Format(r), nil
	})
	if s.After != nil {
		p = pipeline.Batch(p, func(_ context.Context, rs []record.Record) ([]record.Record, error) {
			out, err := s.After(rs)
			if err != nil {
				return nil, apperrors.HookFailed("after", err)
			}
			return out, nil
		})
	}
	return pipeline.Collect(ctx, p)
}

// deliver feeds both sinks in order: the bus notification, then the future.
// The bus gets its own copy of the records, so subscribers cannot change
// what the future resolves with. A notification failure never prevents
// resolution.
func (d *Dispatcher) deliver(ctx context.Context, req *request, records []record.Record) {
	payload := cloneRecords(records)
	if req.index >= 0 {
		d.notify(ctx, req.setting.Event, payload, req.index)
	} else {
		d.notify(ctx, req.setting.Event, payload)
	}
	req.future.resolve(records)
}

// cloneRecords copies records deeply enough that nested arrays are not
// shared either.
func cloneRecords(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, r := range records {
		c := r.Clone()
		for k, v := range c {
			if arr, ok := v.([]any); ok {
				c[k] = append([]any(nil), arr...)
			}
		}
		out[i] = c
	}
	return out
}

// notify emits on the bus. With no bus attached the notification is dropped
// and counted.
func (d *Dispatcher) notify(ctx context.Context, event string, args ...any) {
	if d.bus == nil {
		d.log.Debug("no bus attached, notification dropped", map[string]interface{}{logger.FieldEvent: event})
		d.metrics.RecordDropped(ctx, event)
		return
	}
	observability.SetSpanAttribute(ctx, observability.AttrEvent, event)
	if err := d.bus.Emit(ctx, event, args...); err != nil {
		d.log.Error("notification failed", map[string]interface{}{
			logger.FieldEvent: event,
			logger.FieldError: err.Error(),
		})
		d.metrics.RecordError(ctx, string(apperrors.Wrap(err).Code))
	}
}
