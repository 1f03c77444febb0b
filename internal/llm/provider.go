package llm

import (
	"context"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// LLMProvider defines the interface that all LLM providers must implement.
// Implementations must be safe for concurrent use.
type LLMProvider interface {
	// Name returns the provider name (e.g., "anthropic", "bedrock")
	Name() string

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Health checks the health status of the provider and its connectivity
	Health(ctx context.Context) types.HealthStatus
}

// Generate is the narrow generate(system, messages) call used by the rest of
// the module. It returns the assistant text and fails with ErrEmptyResponse
// when the model produced nothing.
func Generate(ctx context.Context, p LLMProvider, model, system string, messages []Message, params DecodingParams) (string, error) {
	req := NewCompletionRequest(model, messages,
		WithSystemPrompt(system),
		WithDecoding(params),
	)
	if err := req.Validate(); err != nil {
		return "", NewInvalidRequestError(err.Error())
	}

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Message.Content == "" {
		return "", NewEmptyResponseError(p.Name())
	}
	return resp.Message.Content, nil
}
