package providers

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/graphqa/internal/llm"
)

// NewProvider creates a new LLM provider based on the configuration
func NewProvider(ctx context.Context, cfg llm.ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Type {
	case llm.ProviderAnthropic:
		return NewAnthropicProvider(cfg)

	case llm.ProviderOpenAI:
		return NewOpenAIProvider(cfg)

	case llm.ProviderGoogle:
		return NewGoogleProvider(ctx, cfg)

	case llm.ProviderOllama:
		return NewOllamaProvider(cfg)

	case llm.ProviderBedrock:
		return NewBedrockProvider(ctx, cfg)

	case llm.ProviderMock:
		return NewMockProvider([]string{"Mock response"}), nil

	default:
		return nil, llm.NewInvalidRequestError(fmt.Sprintf("unknown provider type: %s", cfg.Type))
	}
}

// NewRegistry builds a registry from named provider configurations,
// optionally wrapping each provider with a response cache.
func NewRegistry(ctx context.Context, configs map[string]llm.ProviderConfig, cacheSize int) (*llm.Registry, error) {
	reg := llm.NewRegistry()
	for name, cfg := range configs {
		p, err := NewProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}
		if cacheSize > 0 {
			cached, err := llm.NewCachingProvider(p, cacheSize)
			if err != nil {
				return nil, err
			}
			p = cached
		}
		if err := reg.Register(name, p); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
