// Package observability provides OpenTelemetry tracing and metrics for the
// ingest pipeline.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("tabkit"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanDispatch)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("tabkit"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("tabkit"))
//	metrics.RecordDispatch(ctx, "path", "ok", elapsed)
//
// Without InitMeter, NopMetrics records nothing.
package observability
