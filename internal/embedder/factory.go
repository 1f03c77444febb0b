package embedder

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/embeddings"
	bedrockembed "github.com/tmc/langchaingo/embeddings/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// EmbedderType represents available embedder implementations.
type EmbedderType string

const (
	// EmbedderTypeBedrock uses Amazon Bedrock (Titan text embeddings by default).
	EmbedderTypeBedrock EmbedderType = "bedrock"

	// EmbedderTypeOpenAI uses the OpenAI embeddings API.
	EmbedderTypeOpenAI EmbedderType = "openai"

	// EmbedderTypeOllama uses a local Ollama server.
	EmbedderTypeOllama EmbedderType = "ollama"

	// EmbedderTypeMock produces deterministic hash-based vectors.
	EmbedderTypeMock EmbedderType = "mock"
)

// CreateEmbedder creates an embedder based on the provided configuration.
func CreateEmbedder(ctx context.Context, config EmbedderConfig) (Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch EmbedderType(config.Provider) {
	case EmbedderTypeBedrock:
		var opts []func(*awsconfig.LoadOptions) error
		if config.Region != "" {
			opts = append(opts, awsconfig.WithRegion(config.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, types.WrapError(ErrCodeEmbedderUnavailable, "failed to load AWS configuration", err)
		}
		inner, err := bedrockembed.NewBedrock(
			bedrockembed.WithModel(config.Model),
			bedrockembed.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
		)
		if err != nil {
			return nil, types.WrapError(ErrCodeEmbedderUnavailable, "failed to create bedrock embedder", err)
		}
		return NewLangchainEmbedder(inner, "bedrock", config.Model, config.Dimensions), nil

	case EmbedderTypeOpenAI:
		apiKey := config.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, types.NewError(ErrCodeInvalidConfig,
				"OpenAI embedder requires api_key (or OPENAI_API_KEY environment variable)")
		}
		opts := []openai.Option{openai.WithToken(apiKey), openai.WithEmbeddingModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		client, err := openai.New(opts...)
		if err != nil {
			return nil, types.WrapError(ErrCodeEmbedderUnavailable, "failed to create openai client", err)
		}
		inner, err := embeddings.NewEmbedder(client)
		if err != nil {
			return nil, types.WrapError(ErrCodeEmbedderUnavailable, "failed to create openai embedder", err)
		}
		return NewLangchainEmbedder(inner, "openai", config.Model, config.Dimensions), nil

	case EmbedderTypeOllama:
		opts := []ollama.Option{ollama.WithModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.BaseURL))
		}
		client, err := ollama.New(opts...)
		if err != nil {
			return nil, types.WrapError(ErrCodeEmbedderUnavailable, "failed to create ollama client", err)
		}
		inner, err := embeddings.NewEmbedder(client)
		if err != nil {
			return nil, types.WrapError(ErrCodeEmbedderUnavailable, "failed to create ollama embedder", err)
		}
		return NewLangchainEmbedder(inner, "ollama", config.Model, config.Dimensions), nil

	case EmbedderTypeMock:
		m := NewMockEmbedder()
		if config.Dimensions > 0 {
			m.SetDimensions(config.Dimensions)
		}
		return m, nil

	default:
		return nil, types.NewError(ErrCodeInvalidConfig,
			fmt.Sprintf("unknown embedder provider '%s' - must be one of bedrock, openai, ollama, mock",
				config.Provider))
	}
}
