// Package app assembles graphqa's components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/go-redis/redis/v8"
	"github.com/zero-day-ai/graphqa/internal/config"
	"github.com/zero-day-ai/graphqa/internal/conversation"
	"github.com/zero-day-ai/graphqa/internal/embedder"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/llm/providers"
	"github.com/zero-day-ai/graphqa/internal/observability"
	"github.com/zero-day-ai/graphqa/internal/pipeline"
	"github.com/zero-day-ai/graphqa/internal/prompt"
	"github.com/zero-day-ai/graphqa/internal/retrieval"
	"github.com/zero-day-ai/graphqa/internal/types"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Options overrides components that would otherwise be built from the
// configuration. Every field is optional.
type Options struct {
	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	Logger   *slog.Logger
	Graph    graph.GraphClient
	Embedder embedder.Embedder
	LLMs     *llm.Registry

	// PromptsFile holds YAML prompts that replace the built-in ones.
	PromptsFile string

	// Timer schedules retry waits; defaults to real time.
	Timer retry.Timer
}

// App owns the long-lived components of one graphqa process.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Graph    graph.GraphClient
	Embedder embedder.Embedder
	LLMs     *llm.Registry
	Prompts  *prompt.Registry
	Metrics  *observability.Metrics
	Health   *observability.HealthMonitor

	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	timer          retry.Timer

	mu        sync.Mutex
	pipelines map[string]*pipeline.Pipeline
	redis     *redis.Client
}

// New builds an App. The graph client is connected before New returns.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	logger := opts.Logger
	if logger == nil {
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		var err error
		logger, err = observability.NewLogger(cfg.Logging, out)
		if err != nil {
			return nil, err
		}
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		timer:     opts.Timer,
		pipelines: make(map[string]*pipeline.Pipeline),
	}

	tp, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	a.tracerProvider = tp
	a.tracer = tp.Tracer("github.com/zero-day-ai/graphqa")

	a.Metrics, err = observability.NewMetrics()
	if err != nil {
		return nil, err
	}
	a.Health = observability.NewHealthMonitor(a.Metrics, logger)

	a.Prompts = prompt.NewRegistry()
	if opts.PromptsFile != "" {
		if err := a.Prompts.RegisterFromYAML(opts.PromptsFile); err != nil {
			return nil, err
		}
	}

	a.Graph = opts.Graph
	if a.Graph == nil {
		client, err := graph.NewNeo4jClient(cfg.Neo4j.GraphClientConfig())
		if err != nil {
			return nil, err
		}
		a.Graph = client
	}
	if err := a.Graph.Connect(ctx); err != nil {
		return nil, err
	}

	a.Embedder = opts.Embedder
	if a.Embedder == nil {
		a.Embedder, err = embedder.CreateEmbedder(ctx, cfg.Embedder)
		if err != nil {
			a.closeGraph(ctx)
			return nil, err
		}
	}

	a.LLMs = opts.LLMs
	if a.LLMs == nil {
		cacheSize := 0
		if cfg.Cache.Enabled {
			cacheSize = cfg.Cache.Size
		}
		a.LLMs, err = providers.NewRegistry(ctx, referencedProviders(cfg.LLM), cacheSize)
		if err != nil {
			a.closeGraph(ctx)
			return nil, err
		}
	}

	a.Health.Register("neo4j", a.Graph)
	a.Health.Register("llm", a.LLMs)
	a.Health.Register("embedder", a.Embedder)

	logger.InfoContext(ctx, "graphqa initialized",
		"neo4j_uri", cfg.Neo4j.URI,
		"strategy", cfg.Retrieval.Strategy,
		"providers", a.LLMs.Names(),
	)
	return a, nil
}

// referencedProviders keeps only the providers some slot uses, so that
// unused defaults never need credentials.
func referencedProviders(cfg config.LLMConfig) map[string]llm.ProviderConfig {
	out := make(map[string]llm.ProviderConfig)
	for _, slot := range []llm.SlotConfig{cfg.Translation, cfg.Synthesis, cfg.Multimodal} {
		if p, ok := cfg.Providers[slot.Provider]; ok {
			out[slot.Provider] = p
		}
	}
	return out
}

// Tracer returns the process tracer.
func (a *App) Tracer() trace.Tracer {
	return a.tracer
}

// Schema returns the schema text fed to the translation prompt: the
// configured static schema, or one described from the database.
func (a *App) Schema(ctx context.Context) (string, error) {
	if a.Config.Retrieval.Schema != "" {
		return a.Config.Retrieval.Schema, nil
	}
	return graph.DescribeSchema(ctx, a.Graph)
}

// Pipeline returns the answer pipeline for a strategy, building it on first
// use. An empty name selects the configured default strategy.
func (a *App) Pipeline(name string) (*pipeline.Pipeline, error) {
	if name == "" {
		name = a.Config.Retrieval.Strategy
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if p, ok := a.pipelines[name]; ok {
		return p, nil
	}

	p, err := a.buildPipeline(name)
	if err != nil {
		return nil, err
	}
	a.pipelines[name] = p
	return p, nil
}

// answerSpec names the model slot, prompt and decoding parameters used to
// answer over a strategy's context.
type answerSpec struct {
	slot     llm.SlotConfig
	promptID string
	params   llm.DecodingParams
}

func (a *App) buildPipeline(name string) (*pipeline.Pipeline, error) {
	var (
		strategy retrieval.Strategy
		answer   answerSpec
		err      error
	)

	switch name {
	case retrieval.StrategyCypher:
		strategy, answer, err = a.cypherStrategy()
	case retrieval.StrategyVector, retrieval.StrategyVectorGraph:
		strategy, answer, err = a.vectorStrategy(name)
	case retrieval.StrategySubgraph:
		strategy, answer, err = a.subgraphStrategy()
	default:
		err = types.NewError(pipeline.ErrCodeInvalidConfig, fmt.Sprintf("unknown strategy %q", name))
	}
	if err != nil {
		return nil, err
	}

	slot, err := a.LLMs.Resolve(answer.slot)
	if err != nil {
		return nil, err
	}
	answerPrompt, err := a.Prompts.Get(answer.promptID)
	if err != nil {
		return nil, err
	}

	cfg := a.Config.Pipeline
	return pipeline.New(pipeline.Config{
		Strategy:     strategy,
		Answerer:     slot,
		Prompt:       answerPrompt,
		Params:       answer.params,
		Attempts:     uint(cfg.Attempts),
		Delay:        cfg.Delay,
		HistoryAware: cfg.HistoryAware,
		Timer:        a.timer,
		Metrics:      a.Metrics,
		Logger:       a.Logger.With("strategy", name),
		Tracer:       a.tracer,
	})
}

func (a *App) strategyObservability() retrieval.Observability {
	return retrieval.Observability{Logger: a.Logger, Tracer: a.tracer}
}

func (a *App) cypherStrategy() (retrieval.Strategy, answerSpec, error) {
	cfg := a.Config
	answer := answerSpec{cfg.LLM.Synthesis, prompt.CypherQAID, cfg.Pipeline.Decoding.Answer}

	translator, err := a.LLMs.Resolve(cfg.LLM.Translation)
	if err != nil {
		return nil, answer, err
	}
	generation, err := a.Prompts.Get(prompt.CypherGenerationID)
	if err != nil {
		return nil, answer, err
	}
	format, err := retrieval.ParseFormat(cfg.Retrieval.Cypher.Format)
	if err != nil {
		return nil, answer, err
	}

	s, err := retrieval.NewCypherStrategy(retrieval.CypherConfig{
		Graph:         a.Graph,
		Translator:    translator,
		Prompt:        generation,
		Params:        cfg.Pipeline.Decoding.Translation,
		Schema:        cfg.Retrieval.Schema,
		MaxRecords:    cfg.Retrieval.Cypher.MaxRecords,
		Format:        format,
		Observability: a.strategyObservability(),
	})
	if err != nil {
		return nil, answer, err
	}
	return s, answer, nil
}

func (a *App) vectorStrategy(name string) (retrieval.Strategy, answerSpec, error) {
	cfg := a.Config
	answer := answerSpec{cfg.LLM.Synthesis, prompt.SECFilingsID, cfg.Pipeline.Decoding.Document}

	settings, statement := cfg.Retrieval.Vector, ""
	if name == retrieval.StrategyVectorGraph {
		settings, statement = cfg.Retrieval.VectorGraph, retrieval.SECFilingsStatement
	}
	format, err := retrieval.ParseFormat(settings.Format)
	if err != nil {
		return nil, answer, err
	}
	if format == retrieval.FormatJSON {
		answer.promptID = prompt.SECFilingsJSONID
	}

	s, err := retrieval.NewVectorStrategy(retrieval.VectorConfig{
		Graph:         a.Graph,
		Embedder:      a.Embedder,
		Index:         settings.Index,
		K:             settings.K,
		Statement:     statement,
		Format:        format,
		Name:          name,
		Observability: a.strategyObservability(),
	})
	if err != nil {
		return nil, answer, err
	}
	return s, answer, nil
}

func (a *App) subgraphStrategy() (retrieval.Strategy, answerSpec, error) {
	cfg := a.Config
	answer := answerSpec{cfg.LLM.Multimodal, prompt.ProcessFlowID, cfg.Pipeline.Decoding.Document}

	settings := cfg.Retrieval.Subgraph
	format, err := retrieval.ParseFormat(settings.Format)
	if err != nil {
		return nil, answer, err
	}

	s, err := retrieval.NewSubgraphStrategy(retrieval.SubgraphConfig{
		Graph:         a.Graph,
		Embedder:      a.Embedder,
		Index:         settings.Index,
		K:             settings.K,
		MaxDepth:      settings.MaxDepth,
		Limit:         settings.Limit,
		ExcludeLabel:  settings.ExcludeLabel,
		Format:        format,
		Observability: a.strategyObservability(),
	})
	if err != nil {
		return nil, answer, err
	}
	return s, answer, nil
}

// StateOptions returns the conversation options from configuration.
func (a *App) StateOptions() []conversation.Option {
	c := a.Config.Conversation
	return []conversation.Option{
		conversation.WithWindow(c.Window),
		conversation.WithMaxExchanges(c.MaxExchanges),
		conversation.WithHistorySource(conversation.HistorySource(c.HistorySource)),
	}
}

// NewState returns an empty conversation state configured like sessions.
func (a *App) NewState() *conversation.State {
	return conversation.NewState(a.StateOptions()...)
}

// SessionStore builds the configured session store. A Redis store is
// pinged before it is returned and registered with the health monitor.
func (a *App) SessionStore(ctx context.Context) (conversation.Store, error) {
	c := a.Config.Conversation
	if c.Store != "redis" {
		return conversation.NewMemoryStore(a.StateOptions()...), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
	store := conversation.NewRedisStore(client, conversation.RedisStoreConfig{
		Prefix:       c.Redis.Prefix,
		TTL:          c.TTL,
		StateOptions: a.StateOptions(),
	})
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, conversation.NewSessionStoreError("failed to connect to redis at "+c.Redis.Addr, err)
	}

	a.mu.Lock()
	a.redis = client
	a.mu.Unlock()

	a.Health.Register("session_store", observability.HealthCheckerFunc(func(ctx context.Context) types.HealthStatus {
		if err := store.Ping(ctx); err != nil {
			return types.Unhealthy(err.Error())
		}
		return types.Healthy("redis reachable")
	}))
	return store, nil
}

// Close releases the graph connection, the Redis client and the tracer
// provider.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	a.mu.Lock()
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
		a.redis = nil
	}
	a.mu.Unlock()

	errs = append(errs, a.Graph.Close(ctx))
	errs = append(errs, observability.ShutdownTracing(ctx, a.tracerProvider))
	return errors.Join(errs...)
}

func (a *App) closeGraph(ctx context.Context) {
	if err := a.Graph.Close(ctx); err != nil {
		a.Logger.WarnContext(ctx, "failed to close graph client", "error", err)
	}
}
