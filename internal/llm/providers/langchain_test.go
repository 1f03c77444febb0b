package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// fakeModel is a langchaingo model that records the messages it receives.
type fakeModel struct {
	reply    string
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangchainProvider_Complete(t *testing.T) {
	model := &fakeModel{reply: "MATCH (n) RETURN n"}
	p := NewLangchainProvider("bedrock", model, llm.ProviderConfig{Type: llm.ProviderBedrock, DefaultModel: "anthropic.claude-v2"})

	out, err := llm.Generate(context.Background(), p, "", "system text",
		[]llm.Message{llm.NewUserMessage("q")}, llm.DecodingParams{TopK: 250, TopP: 1})
	require.NoError(t, err)

	assert.Equal(t, "MATCH (n) RETURN n", out)
	assert.Equal(t, "anthropic.claude-v2", model.opts.Model)
	assert.Equal(t, 250, model.opts.TopK)
	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
}

func TestLangchainProvider_TranslatesErrors(t *testing.T) {
	model := &fakeModel{err: errors.New("ThrottlingException: rate exceeded")}
	p := NewLangchainProvider("bedrock", model, llm.ProviderConfig{Type: llm.ProviderBedrock})

	_, err := p.Complete(context.Background(), llm.NewCompletionRequest("m", []llm.Message{llm.NewUserMessage("q")}))
	require.Error(t, err)
	assert.True(t, types.HasCode(err, llm.ErrProviderRateLimited))
	assert.True(t, llm.IsRetryable(err))
}

func TestLangchainProvider_Health(t *testing.T) {
	p := NewLangchainProvider("ollama", &fakeModel{reply: "pong"}, llm.ProviderConfig{DefaultModel: "llama3"})
	assert.True(t, p.Health(context.Background()).IsHealthy())

	bad := NewLangchainProvider("ollama", &fakeModel{err: errors.New("connection refused")}, llm.ProviderConfig{})
	assert.False(t, bad.Health(context.Background()).IsHealthy())
}
