// Package observability wires OpenTelemetry tracing and metrics for the
// job graph engine.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("jobgraph"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTaskUpdate)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewEngineMetrics(observability.Meter("jobgraph"))
//	metrics.RecordTaskUpdate(ctx, "succeed")
//
// A nil *EngineMetrics is valid and records nothing.
package observability
