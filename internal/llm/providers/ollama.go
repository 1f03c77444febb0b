package providers

import (
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/zero-day-ai/graphqa/internal/llm"
)

// NewOllamaProvider creates a provider for a local Ollama server.
func NewOllamaProvider(cfg llm.ProviderConfig) (*LangchainProvider, error) {
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	opts := []ollama.Option{
		ollama.WithServerURL(serverURL),
	}
	if cfg.DefaultModel != "" {
		opts = append(opts, ollama.WithModel(cfg.DefaultModel))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, llm.NewProviderInitError("ollama", err)
	}

	return NewLangchainProvider("ollama", client, cfg), nil
}
