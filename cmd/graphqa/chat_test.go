package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/cmd/graphqa/internal"
	"github.com/zero-day-ai/graphqa/internal/conversation"
	"github.com/zero-day-ai/graphqa/internal/pipeline"
)

type scriptedRunner struct {
	answers []string
	errs    []error
	calls   [][]string
}

func (r *scriptedRunner) Run(ctx context.Context, lines []string) (*pipeline.Result, error) {
	i := len(r.calls)
	r.calls = append(r.calls, lines)
	if i < len(r.errs) && r.errs[i] != nil {
		return nil, r.errs[i]
	}
	return &pipeline.Result{Answer: r.answers[i], Query: "MATCH (n) RETURN n LIMIT " + string(rune('1'+i))}, nil
}

func newTestChat(input string, runner conversation.Runner) (*chatSession, *bytes.Buffer) {
	var out bytes.Buffer
	s := &chatSession{
		newState: func() *conversation.State { return conversation.NewState() },
		runner:   runner,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		in:       strings.NewReader(input),
		out:      &out,
		format:   internal.NewTextFormatter(&out),
	}
	s.reset()
	return s, &out
}

func TestChatSession_ShowsLastThreeTurns(t *testing.T) {
	runner := &scriptedRunner{answers: []string{"a1", "a2", "a3", "a4"}}
	s, out := newTestChat("q1\nq2\n\nq3\nq4\n", runner)

	require.NoError(t, s.run(context.Background()))

	last := out.String()[strings.LastIndex(out.String(), "you> q2"):]
	assert.Equal(t, "you> q2\nbot> a2\nyou> q3\nbot> a3\nyou> q4\nbot> a4\n\nlast query:\nMATCH (n) RETURN n LIMIT 4\n", last)
	assert.Equal(t, 4, s.chat.State().Len())
	assert.Equal(t, []string{"q1", "a1", "q2", "a2", "q3", "a3", "q4"}, runner.calls[3])
}

func TestChatSession_FailureShowsFallbackAndContinues(t *testing.T) {
	runner := &scriptedRunner{
		answers: []string{"", "a2"},
		errs:    []error{errors.New("quota exceeded")},
	}
	s, out := newTestChat("q1\nq2\n", runner)

	require.NoError(t, s.run(context.Background()))
	assert.Contains(t, out.String(), "bot> "+conversation.FallbackAnswer)
	assert.Contains(t, out.String(), "bot> a2")
	assert.Equal(t, 2, s.chat.State().Len())
}

func TestChatSession_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &scriptedRunner{errs: []error{context.Canceled}}
	s, _ := newTestChat("q1\nq2\n", runner)

	err := s.run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, runner.calls, 1)
}

func TestChatSession_Commands(t *testing.T) {
	runner := &scriptedRunner{answers: []string{"a1", "a2"}}
	s, out := newTestChat("q1\n/history\n/reset\n/bogus\nq2\n/quit\nq3\n", runner)

	require.NoError(t, s.run(context.Background()))
	assert.Contains(t, out.String(), "conversation reset")
	assert.Contains(t, out.String(), "unknown command /bogus")
	assert.Equal(t, 1, s.chat.State().Len(), "reset discards earlier turns")
	assert.Len(t, runner.calls, 2, "input after /quit is not read")
	assert.Equal(t, []string{"q2"}, runner.calls[1])
}
