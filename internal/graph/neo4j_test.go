package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/internal/types"
)

func TestGraphClientConfig_Validate(t *testing.T) {
	valid := GraphClientConfig{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Password:                "password",
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(c *GraphClientConfig)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *GraphClientConfig) {}},
		{name: "empty URI", mutate: func(c *GraphClientConfig) { c.URI = "" }, wantErr: true},
		{name: "empty username", mutate: func(c *GraphClientConfig) { c.Username = "" }, wantErr: true},
		{name: "empty password", mutate: func(c *GraphClientConfig) { c.Password = "" }, wantErr: true},
		{name: "invalid connection timeout", mutate: func(c *GraphClientConfig) { c.ConnectionTimeout = 0 }, wantErr: true},
		{name: "invalid retry timeout", mutate: func(c *GraphClientConfig) { c.MaxTransactionRetryTime = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var qaErr *types.Error
			require.True(t, errors.As(err, &qaErr))
			assert.Equal(t, ErrCodeGraphInvalidConfig, qaErr.Code)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "bolt://localhost:7687", config.URI)
	assert.Equal(t, "neo4j", config.Username)
	assert.Equal(t, "", config.Database)
	assert.Equal(t, 50, config.MaxConnectionPoolSize)
	assert.Equal(t, 30*time.Second, config.ConnectionTimeout)
	require.NoError(t, config.Validate())
}

func TestNeo4jClient_NotConnected(t *testing.T) {
	client, err := NewNeo4jClient(DefaultConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Query(ctx, "RETURN 1", nil)
	assert.True(t, types.HasCode(err, ErrCodeGraphConnectionClosed))

	status := client.Health(ctx)
	assert.Equal(t, types.HealthStateUnhealthy, status.State)

	assert.NoError(t, client.Close(ctx))
}

func TestNeo4jClient_VectorSearchValidatesBeforeQuerying(t *testing.T) {
	client, err := NewNeo4jClient(DefaultConfig())
	require.NoError(t, err)

	_, err = client.VectorSearch(context.Background(), VectorQuery{Index: "document-embeddings", K: 0, Vector: []float32{1}})
	assert.True(t, types.HasCode(err, ErrCodeGraphInvalidQuery))
}

func TestNeo4jClient_ConnectGivesUpAfterRetries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URI = "bolt://127.0.0.1:1"
	cfg.ConnectionTimeout = 20 * time.Millisecond
	client, err := NewNeo4jClient(cfg)
	require.NoError(t, err)

	err = client.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, types.HasCode(err, ErrCodeGraphConnectionFailed))
	assert.Contains(t, err.Error(), "failed to connect after 5 attempts")
	assert.False(t, client.Health(context.Background()).IsHealthy())
}

func TestNeo4jClient_ConnectCancelled(t *testing.T) {
	client, err := NewNeo4jClient(DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = client.Connect(ctx)
	assert.True(t, types.HasCode(err, ErrCodeGraphConnectionFailed))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewNeo4jClient_InvalidConfig(t *testing.T) {
	_, err := NewNeo4jClient(GraphClientConfig{})
	assert.True(t, types.HasCode(err, ErrCodeGraphInvalidConfig))
}

func TestConvertNeo4jResult(t *testing.T) {
	records := []*neo4j.Record{
		{Keys: []string{"disease", "patients"}, Values: []any{"Diabetes", int64(2)}},
		{Keys: []string{"disease", "patients"}, Values: []any{"Asthma", int64(1)}},
	}

	res := convertNeo4jResult([]string{"disease", "patients"}, records)

	assert.Equal(t, []string{"disease", "patients"}, res.Columns)
	require.Equal(t, 2, res.Len())
	assert.Equal(t, "Diabetes", res.Records[0]["disease"])
	assert.Equal(t, int64(1), res.Records[1]["patients"])
}

func TestConvertNeo4jResult_EmptyKeepsColumns(t *testing.T) {
	res := convertNeo4jResult(nil, nil)
	assert.NotNil(t, res.Columns)
	assert.Empty(t, res.Records)
}

func TestVectorMatches(t *testing.T) {
	node := neo4j.Node{ElementId: "4:abc:1", Labels: []string{"Document"}, Props: map[string]any{"text": "chunk"}}

	t.Run("decodes node and score", func(t *testing.T) {
		matches, err := vectorMatches(QueryResult{
			Columns: []string{"node", "score"},
			Records: []map[string]any{{"node": node, "score": 0.93}},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "4:abc:1", matches[0].ElementID)
		assert.Equal(t, "chunk", matches[0].Properties["text"])
		assert.InDelta(t, 0.93, matches[0].Score, 1e-9)
	})

	t.Run("rejects unexpected shape", func(t *testing.T) {
		_, err := vectorMatches(QueryResult{Records: []map[string]any{{"node": "x", "score": 1.0}}})
		assert.True(t, types.HasCode(err, ErrCodeGraphVectorSearchFailed))
	})
}

func TestVectorQuery_Validate(t *testing.T) {
	assert.Error(t, VectorQuery{K: 1, Vector: []float32{1}}.Validate())
	assert.Error(t, VectorQuery{Index: "i", K: 1}.Validate())
	assert.NoError(t, VectorQuery{Index: "i", K: 1, Vector: []float32{1}}.Validate())
}
