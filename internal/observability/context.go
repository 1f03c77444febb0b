package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// ExtractTraceID extracts the trace ID from the context, or "" if there is
// no valid span context.
func ExtractTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// ExtractSpanID extracts the current span ID from the context, or "" if
// there is no valid span context.
func ExtractSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}
