package providers

import (
	"os"

	"github.com/tmc/langchaingo/llms/openai"
	"github.com/zero-day-ai/graphqa/internal/llm"
)

// NewOpenAIProvider creates a provider for OpenAI-compatible chat APIs.
func NewOpenAIProvider(cfg llm.ProviderConfig) (*LangchainProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.NewProviderUnauthorizedError("openai", nil)
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
	}
	if cfg.DefaultModel != "" {
		opts = append(opts, openai.WithModel(cfg.DefaultModel))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, llm.NewProviderInitError("openai", err)
	}

	return NewLangchainProvider("openai", client, cfg), nil
}
