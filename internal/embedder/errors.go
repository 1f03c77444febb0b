package embedder

import "github.com/zero-day-ai/graphqa/internal/types"

// Embedder error codes
const (
	ErrCodeEmbedderUnavailable types.ErrorCode = "EMBEDDER_UNAVAILABLE"
	ErrCodeEmbeddingFailed     types.ErrorCode = "EMBEDDING_FAILED"
	ErrCodeInvalidConfig       types.ErrorCode = "INVALID_EMBEDDER_CONFIG"
)
