package providers

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// LangchainProvider implements llm.LLMProvider over any langchaingo model.
// Each backend constructor in this package returns one.
type LangchainProvider struct {
	name   string
	client llms.Model
	config llm.ProviderConfig
}

// NewLangchainProvider wraps an already constructed langchaingo model.
func NewLangchainProvider(name string, client llms.Model, cfg llm.ProviderConfig) *LangchainProvider {
	return &LangchainProvider{name: name, client: client, config: cfg}
}

// Name returns the provider name
func (p *LangchainProvider) Name() string {
	return p.name
}

// Complete sends a completion request
func (p *LangchainProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if req.Model == "" {
		req.Model = p.config.DefaultModel
	}

	resp, err := p.client.GenerateContent(ctx, toSchemaMessages(req), buildCallOptions(req)...)
	if err != nil {
		return nil, llm.TranslateError(p.name, err)
	}

	return fromLangchainResponse(resp, req.Model), nil
}

// Health sends a one-token request to the default model.
func (p *LangchainProvider) Health(ctx context.Context) types.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req := llm.NewCompletionRequest(p.config.DefaultModel,
		[]llm.Message{llm.NewUserMessage("ping")},
		llm.WithMaxTokens(1),
	)

	if _, err := p.Complete(ctx, req); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy(p.name)
}
