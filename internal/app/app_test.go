package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/internal/config"
	"github.com/zero-day-ai/graphqa/internal/conversation"
	"github.com/zero-day-ai/graphqa/internal/embedder"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/llm/providers"
	"github.com/zero-day-ai/graphqa/internal/pipeline"
	"github.com/zero-day-ai/graphqa/internal/retrieval"
	"github.com/zero-day-ai/graphqa/internal/types"
)

const staticSchema = "Node properties:\nPatient {id: STRING}\nDisease {name: STRING}\nRelationships:\n(:Patient)-[:HAS_DISEASE]->(:Disease)"

type instantTimer struct{}

func (instantTimer) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type fixture struct {
	app      *App
	graph    *graph.MockGraphClient
	provider *providers.MockProvider
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Retrieval.Schema = staticSchema
	if mutate != nil {
		mutate(cfg)
	}

	g := graph.NewMockGraphClient()
	provider := providers.NewMockProvider([]string{"unused"})
	reg := llm.NewRegistry()
	require.NoError(t, reg.Register(config.DefaultProviderName, provider))

	var logs bytes.Buffer
	a, err := New(context.Background(), cfg, Options{
		LogOutput: &logs,
		Graph:     g,
		Embedder:  embedder.NewMockEmbedder(),
		LLMs:      reg,
		Timer:     instantTimer{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	return &fixture{app: a, graph: g, provider: provider, logs: &logs}
}

func TestNew_ConnectsGraph(t *testing.T) {
	f := newFixture(t, nil)
	assert.True(t, f.graph.IsConnected())
	assert.Equal(t, []string{"embedder", "llm", "neo4j"}, f.app.Health.Components())
	assert.Contains(t, f.logs.String(), "graphqa initialized")
}

func TestNew_ConnectFailure(t *testing.T) {
	g := graph.NewMockGraphClient()
	g.SetConnectError(errors.New("connection refused"))

	_, err := New(context.Background(), config.DefaultConfig(), Options{
		LogOutput: &bytes.Buffer{},
		Graph:     g,
		Embedder:  embedder.NewMockEmbedder(),
		LLMs:      llm.NewRegistry(),
	})
	require.Error(t, err)
}

func TestPipeline_CypherEndToEnd(t *testing.T) {
	f := newFixture(t, nil)

	f.provider.SetRespondFunc(func(req llm.CompletionRequest) (string, error) {
		if req.Model == config.DefaultTextModel && strings.Contains(req.Messages[len(req.Messages)-1].Content, "Schema:") {
			return "```cypher\nMATCH (p:Patient)-[:HAS_DISEASE]->(d:Disease) RETURN d.name AS disease, count(p) AS patients\n```", nil
		}
		return "Diabetes affects 2 of your patients.", nil
	})
	f.graph.AddQueryResult(graph.QueryResult{
		Columns: []string{"disease", "patients"},
		Records: []map[string]any{{"disease": "Diabetes", "patients": int64(2)}},
	})

	p, err := f.app.Pipeline("")
	require.NoError(t, err)
	assert.Equal(t, retrieval.StrategyCypher, p.Strategy())

	res, err := p.Ask(context.Background(), "Which disease affects most of my patients?")
	require.NoError(t, err)
	assert.Equal(t, "Diabetes affects 2 of your patients.", res.Answer)
	assert.Contains(t, res.Query, "MATCH (p:Patient)")
	assert.JSONEq(t, `{"disease":"Diabetes","patients":2}`, res.FirstRecordJSON())

	again, err := f.app.Pipeline(retrieval.StrategyCypher)
	require.NoError(t, err)
	assert.Same(t, p, again)
}

func TestPipeline_AllStrategiesBuild(t *testing.T) {
	f := newFixture(t, nil)
	for _, name := range []string{
		retrieval.StrategyCypher,
		retrieval.StrategyVector,
		retrieval.StrategyVectorGraph,
		retrieval.StrategySubgraph,
	} {
		p, err := f.app.Pipeline(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Strategy())
	}

	_, err := f.app.Pipeline("keyword")
	require.Error(t, err)
}

func TestPipeline_VectorGraphUsesJoinStatement(t *testing.T) {
	f := newFixture(t, nil)
	f.provider.SetRespondFunc(func(req llm.CompletionRequest) (string, error) {
		return "Acme filed its report.", nil
	})
	f.graph.AddQueryResult(graph.QueryResult{
		Columns: []string{"company", "annual_report_text_chunk", "owning_asset_manager", "score"},
		Records: []map[string]any{{
			"company": "Acme", "annual_report_text_chunk": "Revenue grew.",
			"owning_asset_manager": "Fund A", "score": 0.91,
		}},
	})

	p, err := f.app.Pipeline(retrieval.StrategyVectorGraph)
	require.NoError(t, err)

	res, err := p.Ask(context.Background(), "What did Acme report?")
	require.NoError(t, err)
	assert.Equal(t, "Acme filed its report.", res.Answer)
	assert.Empty(t, res.Query)

	calls := f.graph.GetCallsByMethod("Query")
	require.Len(t, calls, 1)
	assert.Equal(t, retrieval.SECFilingsStatement, calls[0].Args[0])
	params := calls[0].Args[1].(map[string]any)
	assert.Equal(t, "document-embeddings", params["index"])
	assert.Equal(t, 50, params["k"])

	req := f.provider.GetCalls()[0].Request
	assert.Equal(t, 20000, req.MaxTokens)
	assert.InDelta(t, 0.1, req.TopP, 1e-9)
}

func TestPipeline_VectorPromptFollowsContextFormat(t *testing.T) {
	for _, tc := range []struct {
		format string
		want   string
	}{
		{format: "yaml", want: "context in YAML format"},
		{format: "json", want: "context in JSON format"},
	} {
		t.Run(tc.format, func(t *testing.T) {
			f := newFixture(t, func(c *config.Config) { c.Retrieval.Vector.Format = tc.format })
			f.provider.SetRespondFunc(func(req llm.CompletionRequest) (string, error) {
				return "Revenue grew.", nil
			})
			f.graph.SetVectorMatches([]graph.VectorMatch{
				{Properties: map[string]any{"text": "Revenue grew 4%."}, Score: 0.9},
			})

			p, err := f.app.Pipeline(retrieval.StrategyVector)
			require.NoError(t, err)
			_, err = p.Ask(context.Background(), "How did revenue change?")
			require.NoError(t, err)

			req := f.provider.GetCalls()[0].Request
			assert.Contains(t, req.Messages[len(req.Messages)-1].Content, tc.want)
		})
	}
}

func TestPipeline_SubgraphUsesMultimodalSlot(t *testing.T) {
	f := newFixture(t, nil)
	f.provider.SetRespondFunc(func(req llm.CompletionRequest) (string, error) {
		return "Inspect the landing gear first.", nil
	})

	p, err := f.app.Pipeline(retrieval.StrategySubgraph)
	require.NoError(t, err)

	_, err = p.Ask(context.Background(), "What is the first inspection step?")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultMultimodalModel, f.provider.GetCalls()[0].Request.Model)
}

func TestPipeline_RetriesUseConfiguredAttempts(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Pipeline.Attempts = 2 })
	f.provider.SetRespondFunc(func(req llm.CompletionRequest) (string, error) {
		return "", llm.NewProviderUnavailableError("bedrock", errors.New("throttled"))
	})

	p, err := f.app.Pipeline(retrieval.StrategyVector)
	require.NoError(t, err)

	_, err = p.Ask(context.Background(), "q")
	require.Error(t, err)
	failure, ok := pipeline.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, 2, failure.Attempts)
}

func TestSchema(t *testing.T) {
	f := newFixture(t, nil)
	schema, err := f.app.Schema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, staticSchema, schema)
}

func TestSessionStore_Memory(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Conversation.Window = 2 })

	store, err := f.app.SessionStore(context.Background())
	require.NoError(t, err)
	_, ok := store.(*conversation.MemoryStore)
	assert.True(t, ok)

	_, st, err := store.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Window())
}

func TestSessionStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	f := newFixture(t, func(c *config.Config) {
		c.Conversation.Store = "redis"
		c.Conversation.Redis.Addr = mr.Addr()
	})

	store, err := f.app.SessionStore(context.Background())
	require.NoError(t, err)
	_, ok := store.(*conversation.RedisStore)
	assert.True(t, ok)
	assert.Contains(t, f.app.Health.Components(), "session_store")

	id, _, err := store.Create(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists("graphqa:session:"+id))
}

func TestSessionStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	f := newFixture(t, func(c *config.Config) {
		c.Conversation.Store = "redis"
		c.Conversation.Redis.Addr = addr
	})

	_, err := f.app.SessionStore(context.Background())
	require.Error(t, err)
	assert.True(t, types.HasCode(err, conversation.ErrCodeSessionStoreFailed))
}

func TestReferencedProviders(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	cfg.Providers["unused"] = llm.ProviderConfig{Type: llm.ProviderOpenAI}

	got := referencedProviders(cfg)
	assert.Len(t, got, 1)
	assert.Contains(t, got, config.DefaultProviderName)
}
