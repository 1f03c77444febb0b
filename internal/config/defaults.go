package config

import (
	"time"

	"github.com/zero-day-ai/graphqa/internal/embedder"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/observability"
)

// Model defaults.
const (
	DefaultProviderName    = "bedrock"
	DefaultTextModel       = "anthropic.claude-v2"
	DefaultMultimodalModel = "anthropic.claude-3-sonnet-20240229-v1:0"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:                     "bolt://localhost:7687",
			Username:                "neo4j",
			MaxConnectionPoolSize:   50,
			ConnectionTimeout:       30 * time.Second,
			MaxTransactionRetryTime: 30 * time.Second,
		},
		LLM: LLMConfig{
			Providers: map[string]llm.ProviderConfig{
				DefaultProviderName: {Type: llm.ProviderBedrock},
			},
			Translation: llm.SlotConfig{Provider: DefaultProviderName, Model: DefaultTextModel},
			Synthesis:   llm.SlotConfig{Provider: DefaultProviderName, Model: DefaultTextModel},
			Multimodal:  llm.SlotConfig{Provider: DefaultProviderName, Model: DefaultMultimodalModel},
		},
		Embedder: embedder.DefaultEmbedderConfig(),
		Retrieval: RetrievalConfig{
			Strategy: "cypher",
			Cypher: CypherSettings{
				MaxRecords: 10,
				Format:     "json",
			},
			Vector: VectorSettings{
				Index:  "document-embeddings",
				K:      50,
				Format: "yaml",
			},
			VectorGraph: VectorSettings{
				Index:  "document-embeddings",
				K:      50,
				Format: "yaml",
			},
			Subgraph: SubgraphSettings{
				Index:        "process-flow-emb",
				K:            2,
				MaxDepth:     20,
				Limit:        100,
				ExcludeLabel: "Start",
				Format:       "json",
			},
		},
		Pipeline: PipelineConfig{
			Attempts: 5,
			Delay:    5 * time.Second,
			Decoding: DecodingConfig{
				Translation: llm.DecodingParams{Temperature: 0, TopK: 1, TopP: 0.999, MaxTokens: 2048},
				Answer:      llm.DecodingParams{Temperature: 0, TopK: 1, TopP: 0.999, MaxTokens: 2048},
				Document:    llm.DecodingParams{Temperature: 0, TopK: 1, TopP: 0.1, MaxTokens: 20000},
			},
		},
		Conversation: ConversationConfig{
			Window:        3,
			HistorySource: "answers",
			Store:         "memory",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "graphqa:session:",
			},
			TTL: 24 * time.Hour,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    256,
		},
		Logging: observability.LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: observability.TracingConfig{
			ServiceName: "graphqa",
			SampleRate:  1.0,
		},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
	}
}
