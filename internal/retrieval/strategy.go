package retrieval

import (
	"context"
	"log/slog"

	"github.com/zero-day-ai/graphqa/internal/llm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Strategy names
const (
	StrategyCypher      = "cypher"
	StrategyVector      = "vector"
	StrategyVectorGraph = "vector-graph"
	StrategySubgraph    = "subgraph"
)

// Strategy produces the context for one question.
// Implementations must be safe for concurrent use.
type Strategy interface {
	// Name identifies the strategy in logs, metrics and results.
	Name() string

	// Retrieve gathers and serializes context for question.
	Retrieve(ctx context.Context, question string) (*Context, error)
}

// Generator is the text-generation capability the cypher strategy needs.
// *llm.Slot satisfies it.
type Generator interface {
	Generate(ctx context.Context, system string, messages []llm.Message, params llm.DecodingParams) (string, error)
}

// Observability carries the optional logger and tracer shared by strategies.
type Observability struct {
	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger

	// Tracer defaults to a no-op tracer if nil.
	Tracer trace.Tracer
}

func (o Observability) withDefaults() Observability {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("graphqa/retrieval")
	}
	return o
}

func startSpan(ctx context.Context, tracer trace.Tracer, strategy string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "retrieval.Retrieve",
		trace.WithAttributes(attribute.String("retrieval.strategy", strategy)))
}

func endSpan(span trace.Span, rc *Context, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("retrieval.records", len(rc.Records)))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
