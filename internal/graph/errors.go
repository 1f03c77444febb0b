package graph

import "github.com/zero-day-ai/graphqa/internal/types"

// Graph database error codes
const (
	// Connection errors
	ErrCodeGraphConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"
	ErrCodeGraphConnectionClosed types.ErrorCode = "GRAPH_CONNECTION_CLOSED"

	// Configuration errors
	ErrCodeGraphInvalidConfig types.ErrorCode = "GRAPH_INVALID_CONFIG"

	// Query errors
	ErrCodeGraphQueryFailed        types.ErrorCode = "GRAPH_QUERY_FAILED"
	ErrCodeGraphInvalidQuery       types.ErrorCode = "GRAPH_INVALID_QUERY"
	ErrCodeGraphVectorSearchFailed types.ErrorCode = "GRAPH_VECTOR_SEARCH_FAILED"
	ErrCodeGraphSchemaFailed       types.ErrorCode = "GRAPH_SCHEMA_FAILED"
)
