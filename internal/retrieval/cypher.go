package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/prompt"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// DefaultCypherMaxRecords bounds how many rows reach the answer prompt.
const DefaultCypherMaxRecords = 10

// CypherConfig configures the structured-query strategy.
type CypherConfig struct {
	Graph      graph.GraphClient
	Translator Generator

	// Prompt must expect {schema} and {question}. Defaults to the built-in
	// cypher-generation prompt.
	Prompt *prompt.Prompt

	// Params are the decoding parameters for the translation call.
	Params llm.DecodingParams

	// Schema, when set, is used instead of asking the database.
	Schema string

	// MaxRecords defaults to DefaultCypherMaxRecords. Negative means no limit.
	MaxRecords int

	// Format defaults to JSON.
	Format Format

	Observability
}

// CypherStrategy translates the question into Cypher with the model,
// runs it read-only and returns the rows as context.
type CypherStrategy struct {
	cfg CypherConfig

	mu     sync.Mutex
	schema string
}

// NewCypherStrategy validates cfg and creates the strategy.
func NewCypherStrategy(cfg CypherConfig) (*CypherStrategy, error) {
	if cfg.Graph == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "cypher strategy requires a graph client")
	}
	if cfg.Translator == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "cypher strategy requires a translator")
	}
	if cfg.Prompt == nil {
		p, err := prompt.Builtin(prompt.CypherGenerationID)
		if err != nil {
			return nil, err
		}
		cfg.Prompt = p
	}
	if cfg.MaxRecords == 0 {
		cfg.MaxRecords = DefaultCypherMaxRecords
	}
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	cfg.Observability = cfg.Observability.withDefaults()

	return &CypherStrategy{cfg: cfg, schema: strings.TrimSpace(cfg.Schema)}, nil
}

// Name returns "cypher".
func (s *CypherStrategy) Name() string {
	return StrategyCypher
}

// Schema returns the schema description, fetching it from the database on
// first use. Only successful lookups are cached.
func (s *CypherStrategy) Schema(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schema != "" {
		return s.schema, nil
	}

	schema, err := graph.DescribeSchema(ctx, s.cfg.Graph)
	if err != nil {
		return "", newRetrievalError("failed to describe graph schema", err)
	}
	s.schema = schema
	return schema, nil
}

// Translate asks the model for a Cypher statement answering question.
func (s *CypherStrategy) Translate(ctx context.Context, question string) (string, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return "", err
	}

	system, user, err := s.cfg.Prompt.Build(map[string]string{
		prompt.VarSchema:   schema,
		prompt.VarQuestion: question,
	})
	if err != nil {
		return "", err
	}

	response, err := s.cfg.Translator.Generate(ctx, system, []llm.Message{llm.NewUserMessage(user)}, s.cfg.Params)
	if err != nil {
		return "", err
	}

	query, err := llm.ExtractQuery(response)
	if err != nil {
		return "", newTranslationError("model response contains no Cypher statement", err)
	}
	return query, nil
}

// Retrieve translates the question, runs the statement and serializes at
// most MaxRecords rows.
func (s *CypherStrategy) Retrieve(ctx context.Context, question string) (rc *Context, err error) {
	ctx, span := startSpan(ctx, s.cfg.Tracer, s.Name())
	defer func() { endSpan(span, rc, err) }()

	query, err := s.Translate(ctx, question)
	if err != nil {
		return nil, err
	}
	s.cfg.Logger.DebugContext(ctx, "generated cypher", "query", query)

	res, err := s.cfg.Graph.Query(ctx, query, nil)
	if err != nil {
		return nil, newRetrievalError(fmt.Sprintf("generated query failed: %s", oneLine(query)), err)
	}

	return newContext(s.Name(), query, true, s.cfg.Format, res, s.cfg.MaxRecords)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
