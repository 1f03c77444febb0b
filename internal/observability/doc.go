// Package observability provides logging, tracing, metrics and health
// monitoring for graphqa.
//
// # Logging
//
// NewLogger builds a slog.Logger writing JSON or text. Values logged under
// sensitive keys (password, api_key, token, secret, credential) are
// redacted, and records logged with a context carrying an active span get
// trace_id and span_id attributes.
//
// # Tracing
//
// InitTracing returns an OpenTelemetry tracer provider exporting over OTLP
// gRPC, or a provider that records nothing when tracing is disabled:
//
//	tp, err := observability.InitTracing(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer observability.ShutdownTracing(ctx, tp)
//
// # Metrics
//
// Metrics implements pipeline.MetricsRecorder on a private Prometheus
// registry exposed through Handler.
//
// # Health
//
// HealthMonitor aggregates the health of the graph database, model
// providers, embedder and session store.
package observability
