package providers

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/zero-day-ai/graphqa/internal/llm"
)

// NewBedrockProvider creates a provider for Amazon Bedrock hosted models.
// Credentials come from the standard AWS chain (env, shared config, role).
func NewBedrockProvider(ctx context.Context, cfg llm.ProviderConfig) (*LangchainProvider, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, llm.NewProviderInitError("bedrock", err)
	}

	opts := []bedrock.Option{
		bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
	}
	if cfg.DefaultModel != "" {
		opts = append(opts, bedrock.WithModel(cfg.DefaultModel))
	}

	client, err := bedrock.New(opts...)
	if err != nil {
		return nil, llm.NewProviderInitError("bedrock", err)
	}

	return NewLangchainProvider("bedrock", client, cfg), nil
}
