package embedder

import (
	"context"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// Embedder generates embedding vectors from text content.
// Implementations must be thread-safe for concurrent access.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of embedding vectors, or 0 when it
	// is not known until the first call.
	Dimensions() int

	// Model returns the name of the embedding model being used.
	Model() string

	// Health returns the health status of the embedder.
	Health(ctx context.Context) types.HealthStatus
}

// EmbedderConfig holds configuration for embedding providers.
type EmbedderConfig struct {
	// Provider selects the implementation: "bedrock", "openai", "ollama" or "mock".
	Provider string `yaml:"provider" json:"provider" mapstructure:"provider" validate:"required,oneof=bedrock openai ollama mock"`

	// Model is the embedding model identifier, e.g. "amazon.titan-embed-text-v1".
	Model string `yaml:"model" json:"model" mapstructure:"model" validate:"required"`

	// APIKey is the API key for the embedding provider (openai).
	// Falls back to OPENAI_API_KEY.
	APIKey string `yaml:"api_key" json:"api_key" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (openai, ollama).
	BaseURL string `yaml:"base_url" json:"base_url" mapstructure:"base_url"`

	// Region is the AWS region for bedrock. Empty uses the AWS default chain.
	Region string `yaml:"region" json:"region" mapstructure:"region"`

	// Dimensions is the expected vector length; 0 disables the check.
	Dimensions int `yaml:"dimensions" json:"dimensions" mapstructure:"dimensions" validate:"min=0"`
}

// Validate checks if the EmbedderConfig is valid.
func (c *EmbedderConfig) Validate() error {
	if c.Provider == "" {
		return types.NewError(ErrCodeInvalidConfig, "embedder provider cannot be empty")
	}
	if c.Model == "" {
		return types.NewError(ErrCodeInvalidConfig, "embedder model cannot be empty")
	}
	if c.Dimensions < 0 {
		return types.NewError(ErrCodeInvalidConfig, "dimensions must be non-negative")
	}
	return nil
}

// DefaultEmbedderConfig returns the Bedrock Titan text embedder configuration.
func DefaultEmbedderConfig() EmbedderConfig {
	return EmbedderConfig{
		Provider:   "bedrock",
		Model:      "amazon.titan-embed-text-v1",
		Dimensions: 1536,
	}
}
