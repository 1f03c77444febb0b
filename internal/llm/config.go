package llm

import (
	"fmt"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// ProviderType represents the type of LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderGoogle    ProviderType = "google"
	ProviderOllama    ProviderType = "ollama"
	ProviderBedrock   ProviderType = "bedrock"
	ProviderMock      ProviderType = "mock"
)

// ProviderConfig contains configuration for a specific LLM provider.
type ProviderConfig struct {
	Type         ProviderType `mapstructure:"type" yaml:"type" validate:"required,oneof=anthropic openai google ollama bedrock mock"`
	APIKey       string       `mapstructure:"api_key" yaml:"api_key"`
	BaseURL      string       `mapstructure:"base_url" yaml:"base_url"`
	Region       string       `mapstructure:"region" yaml:"region"`
	DefaultModel string       `mapstructure:"default_model" yaml:"default_model"`
}

// Validate performs validation on the ProviderConfig.
func (p *ProviderConfig) Validate() error {
	switch p.Type {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOllama, ProviderBedrock, ProviderMock:
	case "":
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "provider type cannot be empty")
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unsupported provider type '%s'", p.Type))
	}
	return nil
}

// SlotConfig binds one pipeline role (translation, synthesis) to a
// configured provider and model.
type SlotConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider" validate:"required"`
	Model    string `mapstructure:"model" yaml:"model" validate:"required"`
}

// Validate checks that the slot names both a provider and a model.
func (s SlotConfig) Validate() error {
	if s.Provider == "" {
		return types.NewError(ErrInvalidSlotConfig, "slot provider cannot be empty")
	}
	if s.Model == "" {
		return types.NewError(ErrInvalidSlotConfig, "slot model cannot be empty")
	}
	return nil
}
