package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/zero-day-ai/graphqa/internal/types"
	"github.com/zero-day-ai/graphqa/pkg/version"
)

// Neo4jClient implements GraphClient for Neo4j graph databases.
// All statements run inside managed read transactions, so generated Cypher
// cannot mutate the graph.
type Neo4jClient struct {
	config GraphClientConfig
	driver neo4j.DriverWithContext
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config GraphClientConfig) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Neo4jClient{
		config: config,
	}, nil
}

// Connection retry schedule: the delay doubles from connectBaseDelay and is
// capped at the connection timeout.
const (
	connectAttempts  = 5
	connectBaseDelay = 100 * time.Millisecond
)

// Connect establishes a connection to the Neo4j database, retrying with
// exponential backoff.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		if c.config.MaxConnectionPoolSize > 0 {
			config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		}
		config.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
		config.MaxTransactionRetryTime = c.config.MaxTransactionRetryTime
		config.UserAgent = version.UserAgent()
	}

	driver, err := retry.DoWithData(func() (neo4j.DriverWithContext, error) {
		driver, err := neo4j.NewDriverWithContext(c.config.URI, auth, driverConfig)
		if err != nil {
			return nil, err
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			_ = driver.Close(ctx)
			return nil, err
		}
		return driver, nil
	},
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(connectBaseDelay),
		retry.MaxDelay(c.config.ConnectionTimeout),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if ctx.Err() != nil {
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}
		return types.WrapError(ErrCodeGraphConnectionFailed,
			fmt.Sprintf("failed to connect after %d attempts", connectAttempts), err)
	}

	c.driver = driver
	return nil
}

// Close releases all resources and closes the database connection.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	if err := c.driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeGraphConnectionClosed,
			"failed to close driver", err)
	}

	c.driver = nil
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	if c.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err))
	}

	return types.Healthy("connected to Neo4j")
}

// Query executes a Cypher statement in a read transaction.
func (c *Neo4jClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	if c.driver == nil {
		return QueryResult{}, types.NewError(ErrCodeGraphConnectionClosed,
			"driver not connected")
	}

	startTime := time.Now()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		neoResult, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		keys, err := neoResult.Keys()
		if err != nil {
			return nil, err
		}

		records, err := neoResult.Collect(ctx)
		if err != nil {
			return nil, err
		}

		return convertNeo4jResult(keys, records), nil
	})

	if err != nil {
		if neo4j.IsRetryable(err) {
			return QueryResult{}, types.WrapRetryableError(ErrCodeGraphQueryFailed,
				"query execution failed", err)
		}
		return QueryResult{}, types.WrapError(ErrCodeGraphQueryFailed,
			"query execution failed", err)
	}

	queryResult := result.(QueryResult)
	queryResult.Summary.ExecutionTime = time.Since(startTime)
	queryResult.Summary.Database = c.config.Database

	return queryResult, nil
}

// VectorSearch runs db.index.vector.queryNodes against the named index.
func (c *Neo4jClient) VectorSearch(ctx context.Context, q VectorQuery) ([]VectorMatch, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	res, err := c.Query(ctx, vectorSearchCypher, map[string]any{
		"index":  q.Index,
		"k":      q.K,
		"vector": q.Vector,
	})
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphVectorSearchFailed,
			fmt.Sprintf("vector search on index %q failed", q.Index), err)
	}

	return vectorMatches(res)
}

// vectorMatches decodes node/score rows produced by vectorSearchCypher.
func vectorMatches(res QueryResult) ([]VectorMatch, error) {
	matches := make([]VectorMatch, 0, len(res.Records))
	for i, rec := range res.Records {
		node, ok := rec["node"].(neo4j.Node)
		if !ok {
			return nil, types.NewError(ErrCodeGraphVectorSearchFailed,
				fmt.Sprintf("record %d: node column has type %T", i, rec["node"]))
		}
		score, ok := rec["score"].(float64)
		if !ok {
			return nil, types.NewError(ErrCodeGraphVectorSearchFailed,
				fmt.Sprintf("record %d: score column has type %T", i, rec["score"]))
		}
		matches = append(matches, VectorMatch{
			ElementID:  node.ElementId,
			Labels:     node.Labels,
			Properties: node.Props,
			Score:      score,
		})
	}
	return matches, nil
}

// convertNeo4jResult converts Neo4j records to our QueryResult format.
func convertNeo4jResult(keys []string, records []*neo4j.Record) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: keys,
	}
	if result.Columns == nil {
		result.Columns = []string{}
	}

	for _, record := range records {
		recordMap := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			recordMap[key] = record.Values[i]
		}
		result.Records = append(result.Records, recordMap)
	}

	return result
}
