package retrieval

import (
	"context"

	"github.com/zero-day-ai/graphqa/internal/embedder"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// Defaults for the process-flow index.
const (
	DefaultProcessFlowIndex = "process-flow-emb"
	DefaultProcessFlowK     = 2
	DefaultMaxDepth         = 20
	DefaultSubgraphLimit    = 100
	DefaultExcludeLabel     = "Start"
)

// SubgraphStatement expands each matched node into the subgraph reachable
// within $maxLevel hops, depth first.
const SubgraphStatement = `CALL db.index.vector.queryNodes($index, $k, $queryVector)
YIELD node AS startNode, score
WHERE NOT $excludeLabel IN labels(startNode)
CALL apoc.path.subgraphAll(startNode, {
    minLevel: 0,
    maxLevel: $maxLevel,
    bfs: false
})
YIELD nodes, relationships
RETURN nodes, relationships, score
ORDER BY score DESC LIMIT $limit`

// SubgraphConfig configures the subgraph expansion strategy.
type SubgraphConfig struct {
	Graph    graph.GraphClient
	Embedder embedder.Embedder

	Index string
	K     int

	// MaxDepth bounds the traversal. Defaults to DefaultMaxDepth.
	MaxDepth int

	// Limit caps the returned rows. Defaults to DefaultSubgraphLimit.
	Limit int

	// ExcludeLabel drops matched start nodes carrying it. Defaults to "Start".
	ExcludeLabel string

	// Format defaults to JSON.
	Format Format

	Observability
}

// SubgraphStrategy embeds the question, finds the nearest nodes and returns
// the bounded subgraph around each one.
type SubgraphStrategy struct {
	cfg SubgraphConfig
}

// NewSubgraphStrategy validates cfg and creates the strategy.
func NewSubgraphStrategy(cfg SubgraphConfig) (*SubgraphStrategy, error) {
	if cfg.Graph == nil || cfg.Embedder == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "subgraph strategy requires a graph client and an embedder")
	}
	if cfg.Index == "" {
		cfg.Index = DefaultProcessFlowIndex
	}
	if cfg.K <= 0 {
		cfg.K = DefaultProcessFlowK
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultSubgraphLimit
	}
	if cfg.ExcludeLabel == "" {
		cfg.ExcludeLabel = DefaultExcludeLabel
	}
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	cfg.Observability = cfg.Observability.withDefaults()
	return &SubgraphStrategy{cfg: cfg}, nil
}

// Name returns "subgraph".
func (s *SubgraphStrategy) Name() string {
	return StrategySubgraph
}

// Retrieve embeds the question and expands the matches.
func (s *SubgraphStrategy) Retrieve(ctx context.Context, question string) (rc *Context, err error) {
	ctx, span := startSpan(ctx, s.cfg.Tracer, s.Name())
	defer func() { endSpan(span, rc, err) }()

	vector, err := s.cfg.Embedder.Embed(ctx, question)
	if err != nil {
		return nil, newRetrievalError("failed to embed question", err)
	}

	res, err := s.cfg.Graph.Query(ctx, SubgraphStatement, map[string]any{
		"index":        s.cfg.Index,
		"k":            s.cfg.K,
		"queryVector":  vector,
		"excludeLabel": s.cfg.ExcludeLabel,
		"maxLevel":     s.cfg.MaxDepth,
		"limit":        s.cfg.Limit,
	})
	if err != nil {
		return nil, newRetrievalError("subgraph expansion failed", err)
	}

	s.cfg.Logger.DebugContext(ctx, "subgraph retrieved", "rows", res.Len())
	return newContext(s.Name(), SubgraphStatement, false, s.cfg.Format, res, 0)
}
