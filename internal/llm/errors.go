package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// LLM error codes
const (
	// Provider errors
	ErrProviderNotFound     types.ErrorCode = "LLM_PROVIDER_NOT_FOUND"
	ErrProviderInitFailed   types.ErrorCode = "LLM_PROVIDER_INIT_FAILED"
	ErrProviderUnavailable  types.ErrorCode = "LLM_PROVIDER_UNAVAILABLE"
	ErrProviderUnauthorized types.ErrorCode = "LLM_PROVIDER_UNAUTHORIZED"
	ErrProviderRateLimited  types.ErrorCode = "LLM_PROVIDER_RATE_LIMITED"
	ErrInvalidSlotConfig    types.ErrorCode = "LLM_INVALID_SLOT_CONFIG"

	// Request errors
	ErrInvalidRequest types.ErrorCode = "LLM_INVALID_REQUEST"

	// Completion errors
	ErrCompletionFailed types.ErrorCode = "LLM_COMPLETION_FAILED"
	ErrEmptyResponse    types.ErrorCode = "LLM_EMPTY_RESPONSE"
	ErrNoQueryFound     types.ErrorCode = "LLM_NO_QUERY_FOUND"
	ErrTimeoutExceeded  types.ErrorCode = "LLM_TIMEOUT_EXCEEDED"
	ErrContextCanceled  types.ErrorCode = "LLM_CONTEXT_CANCELED"

	// Network errors
	ErrNetworkFailed types.ErrorCode = "LLM_NETWORK_FAILED"
)

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	var qaErr *types.Error
	if !errors.As(err, &qaErr) {
		return false
	}

	if qaErr.Retryable {
		return true
	}

	switch qaErr.Code {
	case ErrNetworkFailed, ErrProviderRateLimited, ErrProviderUnavailable, ErrTimeoutExceeded:
		return true
	default:
		return false
	}
}

// NewProviderNotFoundError creates an error for when a provider is not found
func NewProviderNotFoundError(providerName string) *types.Error {
	return types.NewError(ErrProviderNotFound, "provider not found: "+providerName)
}

// NewProviderInitError creates an error for a provider that could not be constructed.
func NewProviderInitError(providerName string, cause error) *types.Error {
	return types.WrapError(ErrProviderInitFailed, "failed to initialize provider: "+providerName, cause)
}

// NewProviderUnavailableError creates a retryable error for when a provider is temporarily unavailable
func NewProviderUnavailableError(providerName string, cause error) *types.Error {
	return types.WrapRetryableError(ErrProviderUnavailable, "provider temporarily unavailable: "+providerName, cause)
}

// NewRateLimitError creates a retryable error for rate limiting
func NewRateLimitError(providerName string, cause error) *types.Error {
	return types.WrapRetryableError(ErrProviderRateLimited, "rate limit exceeded for provider: "+providerName, cause)
}

// NewProviderUnauthorizedError creates an unauthorized provider error
func NewProviderUnauthorizedError(providerName string, cause error) *types.Error {
	return types.WrapError(ErrProviderUnauthorized,
		fmt.Sprintf("provider '%s' authentication failed", providerName), cause)
}

// NewInvalidRequestError creates an error for invalid requests
func NewInvalidRequestError(message string) *types.Error {
	return types.NewError(ErrInvalidRequest, message)
}

// NewEmptyResponseError is returned when a provider answers with no text.
func NewEmptyResponseError(providerName string) *types.Error {
	return types.NewError(ErrEmptyResponse, "provider returned an empty response: "+providerName)
}

// NewNetworkError creates a retryable error for network failures
func NewNetworkError(message string, cause error) *types.Error {
	return types.WrapRetryableError(ErrNetworkFailed, message, cause)
}

// NewTimeoutError creates a retryable error for timeout failures
func NewTimeoutError(message string, cause error) *types.Error {
	return types.WrapRetryableError(ErrTimeoutExceeded, message, cause)
}

// TranslateError maps provider SDK errors onto LLM error codes by inspecting
// the error chain and message.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var qaErr *types.Error
	if errors.As(err, &qaErr) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return types.WrapError(ErrContextCanceled, "request cancelled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request deadline exceeded", err)
	}

	lowerMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lowerMsg, "unauthorized") || strings.Contains(lowerMsg, "authentication") ||
		strings.Contains(lowerMsg, "api key") || strings.Contains(lowerMsg, "accessdenied"):
		return NewProviderUnauthorizedError(provider, err)
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "too many requests") ||
		strings.Contains(lowerMsg, "throttl") || strings.Contains(lowerMsg, "quota"):
		return NewRateLimitError(provider, err)
	case strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline"):
		return NewTimeoutError(err.Error(), err)
	case strings.Contains(lowerMsg, "network") || strings.Contains(lowerMsg, "connection"):
		return NewNetworkError(err.Error(), err)
	default:
		return NewProviderUnavailableError(provider, err)
	}
}
