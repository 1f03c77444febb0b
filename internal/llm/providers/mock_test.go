package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/internal/llm"
)

func TestMockProvider_CyclesResponses(t *testing.T) {
	p := NewMockProvider([]string{"a", "b"})
	ctx := context.Background()
	req := llm.NewCompletionRequest("m", []llm.Message{llm.NewUserMessage("q")})

	var got []string
	for i := 0; i < 3; i++ {
		resp, err := p.Complete(ctx, req)
		require.NoError(t, err)
		got = append(got, resp.Message.Content)
	}

	assert.Equal(t, []string{"a", "b", "a"}, got)
	assert.Equal(t, 3, p.CallCount())
}

func TestMockProvider_QueuedErrorsFirst(t *testing.T) {
	p := NewMockProvider([]string{"ok"})
	p.QueueError(errors.New("boom"))
	req := llm.NewCompletionRequest("m", []llm.Message{llm.NewUserMessage("q")})

	_, err := p.Complete(context.Background(), req)
	assert.EqualError(t, err, "boom")

	resp, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message.Content)
}

func TestMockProvider_RespondFunc(t *testing.T) {
	p := NewMockProvider(nil)
	p.SetRespondFunc(func(req llm.CompletionRequest) (string, error) {
		return "echo: " + req.Messages[0].Content, nil
	})

	resp, err := p.Complete(context.Background(), llm.NewCompletionRequest("m", []llm.Message{llm.NewUserMessage("hi")}))
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", resp.Message.Content)
	assert.Equal(t, "hi", p.GetCalls()[0].Request.Messages[0].Content)
}

func TestMockProvider_NoResponses(t *testing.T) {
	p := NewMockProvider(nil)
	_, err := p.Complete(context.Background(), llm.NewCompletionRequest("m", []llm.Message{llm.NewUserMessage("q")}))
	assert.Error(t, err)
}

func TestMockProvider_Reset(t *testing.T) {
	p := NewMockProvider([]string{"a", "b"})
	req := llm.NewCompletionRequest("m", []llm.Message{llm.NewUserMessage("q")})
	_, _ = p.Complete(context.Background(), req)
	p.Reset()

	assert.Zero(t, p.CallCount())
	resp, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "a", resp.Message.Content)
}
