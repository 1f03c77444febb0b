package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/prompt"
	"github.com/zero-day-ai/graphqa/internal/retrieval"
	"github.com/zero-day-ai/graphqa/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Retry defaults. The delay is fixed: no backoff and no jitter.
const (
	DefaultAttempts = 5
	DefaultDelay    = 5 * time.Second
)

// Config configures a Pipeline.
type Config struct {
	// Strategy assembles the context. Required.
	Strategy retrieval.Strategy

	// Answerer synthesizes the answer. Required.
	Answerer retrieval.Generator

	// Prompt is the answer prompt. Its template may use {input} or
	// {question} for the question and {context} for the payload. Required.
	Prompt *prompt.Prompt

	// Params are the decoding parameters for the answer call.
	Params llm.DecodingParams

	// Attempts defaults to DefaultAttempts.
	Attempts uint

	// Delay defaults to DefaultDelay.
	Delay time.Duration

	// HistoryAware feeds every line passed to Run into the question.
	// Otherwise only the last line is used.
	HistoryAware bool

	// Timer schedules the wait between attempts. Optional: defaults to
	// real time.
	Timer retry.Timer

	// OnStateChange observes state transitions. Optional.
	OnStateChange func(State)

	// Metrics defaults to NoOpMetricsRecorder if nil.
	Metrics MetricsRecorder

	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger

	// Tracer defaults to a no-op tracer if nil.
	Tracer trace.Tracer
}

// Result is the outcome of a successful run.
type Result struct {
	// Answer is the model's answer. Never empty.
	Answer string

	// Context is the serialized payload the answer was grounded on.
	Context string

	// Query is the generated structured query, empty when the strategy
	// does not generate one.
	Query string

	// Prompt is the rendered user prompt sent to the answer model.
	Prompt string

	Retrieval *retrieval.Context
	Attempts  int
	Elapsed   time.Duration
}

// FirstRecord returns the first retrieved record, or nil.
func (r *Result) FirstRecord() *graph.Record {
	if r == nil {
		return nil
	}
	return r.Retrieval.FirstRecord()
}

// FirstRecordJSON returns the first retrieved record as JSON, or "{}".
func (r *Result) FirstRecordJSON() string {
	if r == nil {
		return "{}"
	}
	return r.Retrieval.FirstRecordJSON()
}

// Pipeline turns a question into a grounded answer: assemble context, ask
// the model, and retry the whole sequence on failure.
// A Pipeline is safe for concurrent use when its strategy and answerer are.
type Pipeline struct {
	cfg Config
}

// New validates cfg and creates a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Strategy == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "pipeline requires a retrieval strategy")
	}
	if cfg.Answerer == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "pipeline requires an answer generator")
	}
	if cfg.Prompt == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "pipeline requires an answer prompt")
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoOpMetricsRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("graphqa/pipeline")
	}
	return &Pipeline{cfg: cfg}, nil
}

// Strategy returns the name of the configured retrieval strategy.
func (p *Pipeline) Strategy() string {
	return p.cfg.Strategy.Name()
}

// Ask runs the pipeline for a single question.
func (p *Pipeline) Ask(ctx context.Context, question string) (*Result, error) {
	return p.Run(ctx, []string{question})
}

// Run answers the question formed by lines. lines is the list produced by
// conversation.State.BuildRecentContext: history first, the new question
// last.
func (p *Pipeline) Run(ctx context.Context, lines []string) (*Result, error) {
	question := p.effectiveQuestion(lines)
	if question == "" {
		return nil, types.NewError(ErrCodeInvalidInput, "question cannot be empty")
	}

	strategy := p.cfg.Strategy.Name()
	logger := p.cfg.Logger.With("strategy", strategy)

	ctx, span := p.cfg.Tracer.Start(ctx, "pipeline.Run",
		trace.WithAttributes(
			attribute.String("pipeline.strategy", strategy),
			attribute.Int("pipeline.max_attempts", int(p.cfg.Attempts)),
		))
	defer span.End()

	p.transition(StateIdle)
	start := time.Now()
	attempts := 0

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.cfg.Attempts),
		retry.Delay(p.cfg.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if int(n)+1 < int(p.cfg.Attempts) {
				p.transition(StateRetrying)
			}
		}),
	}
	if p.cfg.Timer != nil {
		opts = append(opts, retry.WithTimer(p.cfg.Timer))
	}

	result, err := retry.DoWithData(func() (*Result, error) {
		attempts++
		attemptStart := time.Now()

		// A cached completion would replay the output that just failed.
		attemptCtx := ctx
		if attempts > 1 {
			attemptCtx = llm.WithoutCache(ctx)
		}

		res, err := p.attempt(attemptCtx, question)
		elapsed := time.Since(attemptStart)
		p.cfg.Metrics.RecordAttempt(strategy, err, elapsed)

		if err != nil {
			logger.WarnContext(ctx, "pipeline attempt failed",
				"attempt", attempts,
				"elapsed", elapsed,
				"error", err,
				"code", string(types.CodeOf(err)),
			)
			if !shouldRetry(ctx, err) {
				return nil, retry.Unrecoverable(err)
			}
			return nil, err
		}

		logger.InfoContext(ctx, "pipeline attempt succeeded",
			"attempt", attempts,
			"elapsed", elapsed,
		)
		return res, nil
	}, opts...)

	total := time.Since(start)
	p.cfg.Metrics.RecordRun(strategy, attempts, err, total)
	span.SetAttributes(attribute.Int("pipeline.attempts", attempts))

	if err != nil {
		p.transition(StateFailed)
		failure := &FailureError{Strategy: strategy, Attempts: attempts, Elapsed: total, Cause: err}
		logger.ErrorContext(ctx, "pipeline failed",
			"attempts", attempts,
			"elapsed", total,
			"error", err,
		)
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Error())
		return nil, failure
	}

	p.transition(StateCompleted)
	span.SetStatus(codes.Ok, "")
	result.Attempts = attempts
	result.Elapsed = total
	return result, nil
}

// attempt runs retrieval and answer synthesis once.
func (p *Pipeline) attempt(ctx context.Context, question string) (*Result, error) {
	p.transition(StateAssemblingContext)
	rc, err := p.cfg.Strategy.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	system, user, err := p.cfg.Prompt.Build(map[string]string{
		prompt.VarInput:    question,
		prompt.VarQuestion: question,
		prompt.VarContext:  rc.Text,
	})
	if err != nil {
		return nil, err
	}

	p.transition(StateAwaitingModel)
	answer, err := p.cfg.Answerer.Generate(ctx, system, []llm.Message{llm.NewUserMessage(user)}, p.cfg.Params)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer) == "" {
		return nil, llm.NewEmptyResponseError("answer model")
	}

	return &Result{
		Answer:    answer,
		Context:   rc.Text,
		Query:     rc.GeneratedQuery(),
		Prompt:    user,
		Retrieval: rc,
	}, nil
}

func (p *Pipeline) effectiveQuestion(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	if !p.cfg.HistoryAware {
		return kept[len(kept)-1]
	}
	return strings.Join(kept, "\n")
}

func (p *Pipeline) transition(s State) {
	if p.cfg.OnStateChange != nil {
		p.cfg.OnStateChange(s)
	}
}

// shouldRetry is false for failures another attempt cannot fix: the caller
// gave up, the prompt does not render, or the request itself is invalid.
func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch types.CodeOf(err) {
	case prompt.ErrCodeMissingVariable, prompt.ErrCodeUnresolvedPlaceholder, prompt.ErrCodeInvalidTemplate,
		llm.ErrInvalidRequest, llm.ErrContextCanceled:
		return false
	}
	return true
}
