package retrieval

import (
	"github.com/zero-day-ai/graphqa/internal/types"
)

// Retrieval error codes
const (
	// ErrCodeRetrievalFailed covers graph and embedding failures while
	// gathering context.
	ErrCodeRetrievalFailed types.ErrorCode = "RETRIEVAL_FAILED"

	// ErrCodeTranslationFailed means the model produced no usable query.
	ErrCodeTranslationFailed types.ErrorCode = "TRANSLATION_FAILED"

	ErrCodeSerializationFailed types.ErrorCode = "SERIALIZATION_FAILED"
	ErrCodeInvalidConfig       types.ErrorCode = "RETRIEVAL_INVALID_CONFIG"
)

// newRetrievalError wraps cause, keeping it retryable when the cause is.
func newRetrievalError(message string, cause error) *types.Error {
	e := types.WrapError(ErrCodeRetrievalFailed, message, cause)
	if isRetryable(cause) {
		e.Retryable = true
	}
	return e
}

func newTranslationError(message string, cause error) *types.Error {
	return types.WrapRetryableError(ErrCodeTranslationFailed, message, cause)
}

func isRetryable(err error) bool {
	for err != nil {
		if e, ok := err.(*types.Error); ok {
			if e.Retryable {
				return true
			}
			err = e.Cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
