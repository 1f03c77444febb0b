package prompt

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/graphqa/internal/types"
)

const (
	// Prompt management errors
	ErrCodePromptNotFound      types.ErrorCode = "PROMPT_NOT_FOUND"
	ErrCodePromptAlreadyExists types.ErrorCode = "PROMPT_ALREADY_EXISTS"
	ErrCodeInvalidPrompt       types.ErrorCode = "INVALID_PROMPT"

	// Template errors
	ErrCodeMissingVariable       types.ErrorCode = "MISSING_REQUIRED_VARIABLE"
	ErrCodeUnresolvedPlaceholder types.ErrorCode = "UNRESOLVED_PLACEHOLDER"
	ErrCodeInvalidTemplate       types.ErrorCode = "INVALID_TEMPLATE"

	// YAML errors
	ErrCodeYAMLParse types.ErrorCode = "YAML_PARSE_FAILED"
)

// NewPromptNotFoundError creates an error for when a prompt is not found
func NewPromptNotFoundError(id string) error {
	return types.NewError(ErrCodePromptNotFound, fmt.Sprintf("prompt not found: %s", id))
}

// NewPromptAlreadyExistsError creates an error for when a prompt already exists
func NewPromptAlreadyExistsError(id string) error {
	return types.NewError(ErrCodePromptAlreadyExists, fmt.Sprintf("prompt already exists: %s", id))
}

// NewInvalidPromptError creates an error for invalid prompt definitions
func NewInvalidPromptError(reason string) error {
	return types.NewError(ErrCodeInvalidPrompt, fmt.Sprintf("invalid prompt: %s", reason))
}

// NewMissingVariableError creates an error for missing required template variables
func NewMissingVariableError(templateName string, names []string) error {
	return types.NewError(
		ErrCodeMissingVariable,
		fmt.Sprintf("template '%s' requires variable(s): %s", templateName, strings.Join(names, ", ")),
	)
}

// NewUnresolvedPlaceholderError reports placeholder-like text that would
// reach the model unsubstituted.
func NewUnresolvedPlaceholderError(templateName string, tokens []string) error {
	return types.NewError(
		ErrCodeUnresolvedPlaceholder,
		fmt.Sprintf("template '%s' has unresolved placeholder(s): %s", templateName, strings.Join(tokens, ", ")),
	)
}

// NewInvalidTemplateError creates an error for invalid template syntax
func NewInvalidTemplateError(templateName, reason string) error {
	return types.NewError(
		ErrCodeInvalidTemplate,
		fmt.Sprintf("invalid template '%s': %s", templateName, reason),
	)
}

// NewYAMLParseError creates an error for YAML parsing failures
func NewYAMLParseError(filePath string, cause error) error {
	return types.WrapError(
		ErrCodeYAMLParse,
		fmt.Sprintf("failed to parse YAML file: %s", filePath),
		cause,
	)
}
