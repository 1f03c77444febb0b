package graph

import (
	"context"
	"strings"
	"time"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// GraphClient is the read-side boundary to the graph database.
// Implementations must be safe for concurrent use by independent sessions.
type GraphClient interface {
	// Connect establishes a connection to the graph database.
	Connect(ctx context.Context) error

	// Close releases all resources and closes the database connection.
	Close(ctx context.Context) error

	// Health returns the current health status of the graph database connection.
	Health(ctx context.Context) types.HealthStatus

	// Query executes a read-only Cypher statement with the given parameters.
	// Records are returned in server order with their column names preserved.
	Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// VectorSearch looks up the K nearest nodes of a named vector index.
	VectorSearch(ctx context.Context, q VectorQuery) ([]VectorMatch, error)
}

// QueryResult represents the result of a Cypher query execution.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Columns contains the names of the columns in the result set, in
	// RETURN clause order.
	Columns []string

	// Summary contains metadata about the query execution.
	Summary QuerySummary
}

// Len returns the number of records.
func (r QueryResult) Len() int {
	return len(r.Records)
}

// QuerySummary provides metadata about query execution.
type QuerySummary struct {
	ExecutionTime time.Duration
	Database      string
}

// VectorQuery describes a nearest-neighbour lookup against a named vector index.
type VectorQuery struct {
	Index  string
	K      int
	Vector []float32
}

// Validate checks the query before it is sent to the database.
func (q VectorQuery) Validate() error {
	if strings.TrimSpace(q.Index) == "" {
		return types.NewError(ErrCodeGraphInvalidQuery, "vector index name cannot be empty")
	}
	if q.K <= 0 {
		return types.NewError(ErrCodeGraphInvalidQuery, "vector query K must be positive")
	}
	if len(q.Vector) == 0 {
		return types.NewError(ErrCodeGraphInvalidQuery, "query vector cannot be empty")
	}
	return nil
}

// VectorMatch is one node returned by a vector index lookup.
type VectorMatch struct {
	ElementID  string
	Labels     []string
	Properties map[string]any
	Score      float64
}

// vectorSearchCypher is the statement used by VectorSearch.
const vectorSearchCypher = `CALL db.index.vector.queryNodes($index, $k, $vector)
YIELD node, score
RETURN node, score
ORDER BY score DESC`

// GraphClientConfig contains configuration options for graph database clients.
type GraphClientConfig struct {
	// URI is the connection URI for the graph database.
	// For Neo4j, use:
	//   - "bolt://host:port" for unencrypted connections
	//   - "bolt+s://host:port" for TLS encrypted connections
	//   - "neo4j://" or "neo4j+s://" for routing
	URI string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Database name to connect to.
	// Empty string uses the default database.
	Database string

	// MaxConnectionPoolSize limits the number of connections in the pool.
	// Zero or negative values use the driver default.
	MaxConnectionPoolSize int

	// ConnectionTimeout is the maximum time to wait for a connection.
	ConnectionTimeout time.Duration

	// MaxTransactionRetryTime is the maximum time the driver retries
	// a failed managed transaction.
	MaxTransactionRetryTime time.Duration
}

// DefaultConfig returns a GraphClientConfig with local development defaults.
func DefaultConfig() GraphClientConfig {
	return GraphClientConfig{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Password:                "password",
		Database:                "",
		MaxConnectionPoolSize:   50,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c GraphClientConfig) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Password cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "ConnectionTimeout must be positive")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "MaxTransactionRetryTime must be positive")
	}
	return nil
}
