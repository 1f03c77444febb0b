package retrieval

import (
	"context"
	"strings"

	"github.com/zero-day-ai/graphqa/internal/embedder"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// Defaults for the SEC filings index.
const (
	DefaultDocumentIndex = "document-embeddings"
	DefaultDocumentK     = 50
)

// SECFilingsStatement joins each matched chunk to its company and the
// managers owning it, averaging scores per row.
const SECFilingsStatement = `CALL db.index.vector.queryNodes($index, $k, $queryVector)
YIELD node AS doc, score
OPTIONAL MATCH (doc)<-[:HAS]-(company:Company), (company)<-[:OWNS]-(manager:Manager)
RETURN company.companyName AS company, doc.text AS annual_report_text_chunk, manager.managerName AS owning_asset_manager, avg(score) AS score
ORDER BY score DESC LIMIT $k`

// VectorConfig configures a vector strategy.
type VectorConfig struct {
	Graph    graph.GraphClient
	Embedder embedder.Embedder

	Index string
	K     int

	// Statement is a Cypher statement taking $queryVector, $index and $k.
	// When empty the strategy runs a plain index lookup and returns the
	// matched node properties ranked by score.
	Statement string

	// ExcludeProperties are dropped from matched nodes in plain lookups.
	// Defaults to ["embedding"].
	ExcludeProperties []string

	// Format defaults to YAML.
	Format Format

	// Name overrides the strategy name. Defaults to "vector" for plain
	// lookups and "vector-graph" when Statement is set.
	Name string

	Observability
}

// VectorStrategy embeds the question, queries a vector index and
// optionally expands matches through a fixed join pattern.
type VectorStrategy struct {
	cfg VectorConfig
}

// NewVectorStrategy validates cfg and creates the strategy.
func NewVectorStrategy(cfg VectorConfig) (*VectorStrategy, error) {
	if cfg.Graph == nil || cfg.Embedder == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "vector strategy requires a graph client and an embedder")
	}
	if cfg.Index == "" {
		cfg.Index = DefaultDocumentIndex
	}
	if cfg.K <= 0 {
		cfg.K = DefaultDocumentK
	}
	if cfg.ExcludeProperties == nil {
		cfg.ExcludeProperties = []string{"embedding"}
	}
	if cfg.Format == "" {
		cfg.Format = FormatYAML
	}
	if cfg.Name == "" {
		cfg.Name = StrategyVector
		if strings.TrimSpace(cfg.Statement) != "" {
			cfg.Name = StrategyVectorGraph
		}
	}
	cfg.Observability = cfg.Observability.withDefaults()
	return &VectorStrategy{cfg: cfg}, nil
}

// Name returns the configured strategy name.
func (s *VectorStrategy) Name() string {
	return s.cfg.Name
}

// Retrieve embeds the question and runs the lookup.
func (s *VectorStrategy) Retrieve(ctx context.Context, question string) (rc *Context, err error) {
	ctx, span := startSpan(ctx, s.cfg.Tracer, s.Name())
	defer func() { endSpan(span, rc, err) }()

	vector, err := s.cfg.Embedder.Embed(ctx, question)
	if err != nil {
		return nil, newRetrievalError("failed to embed question", err)
	}

	if strings.TrimSpace(s.cfg.Statement) == "" {
		return s.lookup(ctx, vector)
	}

	res, err := s.cfg.Graph.Query(ctx, s.cfg.Statement, map[string]any{
		"index":       s.cfg.Index,
		"k":           s.cfg.K,
		"queryVector": vector,
	})
	if err != nil {
		return nil, newRetrievalError("vector join query failed", err)
	}

	return newContext(s.Name(), s.cfg.Statement, false, s.cfg.Format, res, 0)
}

// lookup ranks matched nodes by score. Each row carries the node's
// properties, minus excluded ones, followed by the score.
func (s *VectorStrategy) lookup(ctx context.Context, vector []float32) (*Context, error) {
	matches, err := s.cfg.Graph.VectorSearch(ctx, graph.VectorQuery{
		Index:  s.cfg.Index,
		K:      s.cfg.K,
		Vector: vector,
	})
	if err != nil {
		return nil, newRetrievalError("vector index lookup failed", err)
	}

	excluded := make(map[string]bool, len(s.cfg.ExcludeProperties))
	for _, p := range s.cfg.ExcludeProperties {
		excluded[p] = true
	}

	res := graph.QueryResult{Columns: []string{"node", "score"}}
	for _, m := range matches {
		props := make(map[string]any, len(m.Properties))
		for k, v := range m.Properties {
			if !excluded[k] {
				props[k] = v
			}
		}
		res.Records = append(res.Records, map[string]any{"node": props, "score": m.Score})
	}

	return newContext(s.Name(), "", false, s.cfg.Format, res, 0)
}
