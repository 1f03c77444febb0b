package conversation

import (
	"context"
	"log/slog"

	"github.com/zero-day-ai/graphqa/internal/pipeline"
)

// FallbackAnswer is recorded and shown when a turn fails.
const FallbackAnswer = "Could not generate result due to an error or LLM Quota exceeded"

// failedContext is recorded as the context of a failed turn.
const failedContext = "{}"

// Runner is the pipeline entry point used by Chat.
type Runner interface {
	Run(ctx context.Context, lines []string) (*pipeline.Result, error)
}

// Chat records each question and its outcome into a State.
type Chat struct {
	state  *State
	runner Runner
	logger *slog.Logger
}

// NewChat binds a runner to a conversation state.
func NewChat(state *State, runner Runner, logger *slog.Logger) *Chat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{state: state, runner: runner, logger: logger}
}

// State returns the underlying conversation state.
func (c *Chat) State() *State {
	return c.state
}

// Ask answers question using recent history and records the turn. A failed
// turn is still recorded, with FallbackAnswer, no query and "{}" as context;
// the exchange is returned together with the error.
func (c *Chat) Ask(ctx context.Context, question string) (Exchange, error) {
	lines := c.state.BuildRecentContext(question, 0)

	res, err := c.runner.Run(ctx, lines)
	if err != nil {
		c.logger.ErrorContext(ctx, "chat turn failed", "error", err)
		ex := Exchange{Question: question, Answer: FallbackAnswer, Context: failedContext}
		c.state.AppendExchange(ex.Question, ex.Answer, ex.Query, ex.Context)
		return ex, err
	}

	ex := Exchange{Question: question, Answer: res.Answer, Query: res.Query}
	if res.FirstRecord() != nil {
		ex.Context = res.FirstRecordJSON()
	}
	c.state.AppendExchange(ex.Question, ex.Answer, ex.Query, ex.Context)
	return ex, nil
}
