package conversation

import (
	"fmt"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// Conversation error codes
const (
	ErrCodeSessionNotFound    types.ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFailed types.ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeInvalidConfig      types.ErrorCode = "CONVERSATION_INVALID_CONFIG"
)

// NewSessionNotFoundError creates an error for an unknown session ID.
func NewSessionNotFoundError(id string) *types.Error {
	return types.NewError(ErrCodeSessionNotFound, fmt.Sprintf("session not found: %s", id))
}

// NewSessionStoreError wraps a storage backend failure.
func NewSessionStoreError(message string, cause error) *types.Error {
	return types.WrapRetryableError(ErrCodeSessionStoreFailed, message, cause)
}
