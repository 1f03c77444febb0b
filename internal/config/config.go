package config

import (
	"time"

	"github.com/zero-day-ai/graphqa/internal/embedder"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/observability"
)

// Config is the root configuration for graphqa.
type Config struct {
	Neo4j        Neo4jConfig                 `mapstructure:"neo4j" yaml:"neo4j"`
	LLM          LLMConfig                   `mapstructure:"llm" yaml:"llm"`
	Embedder     embedder.EmbedderConfig     `mapstructure:"embedder" yaml:"embedder"`
	Retrieval    RetrievalConfig             `mapstructure:"retrieval" yaml:"retrieval"`
	Pipeline     PipelineConfig              `mapstructure:"pipeline" yaml:"pipeline"`
	Conversation ConversationConfig          `mapstructure:"conversation" yaml:"conversation"`
	Cache        CacheConfig                 `mapstructure:"cache" yaml:"cache"`
	Logging      observability.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing      observability.TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	Server       ServerConfig                `mapstructure:"server" yaml:"server"`
}

// Neo4jConfig contains graph database connection settings.
type Neo4jConfig struct {
	URI                     string        `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username                string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password                string        `mapstructure:"password" yaml:"password"`
	Database                string        `mapstructure:"database" yaml:"database"`
	MaxConnectionPoolSize   int           `mapstructure:"max_connection_pool_size" yaml:"max_connection_pool_size" validate:"min=0"`
	ConnectionTimeout       time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout" validate:"min=1s"`
	MaxTransactionRetryTime time.Duration `mapstructure:"max_transaction_retry_time" yaml:"max_transaction_retry_time" validate:"min=1s"`
}

// GraphClientConfig converts the section into a graph client configuration.
func (c Neo4jConfig) GraphClientConfig() graph.GraphClientConfig {
	return graph.GraphClientConfig{
		URI:                     c.URI,
		Username:                c.Username,
		Password:                c.Password,
		Database:                c.Database,
		MaxConnectionPoolSize:   c.MaxConnectionPoolSize,
		ConnectionTimeout:       c.ConnectionTimeout,
		MaxTransactionRetryTime: c.MaxTransactionRetryTime,
	}
}

// LLMConfig declares the available providers and which provider/model
// serves each pipeline role.
type LLMConfig struct {
	// Providers are keyed by a free-form name referenced from the slots.
	// Names are lower-cased by the loader.
	Providers map[string]llm.ProviderConfig `mapstructure:"providers" yaml:"providers" validate:"required,min=1,dive"`

	// Translation turns questions into Cypher.
	Translation llm.SlotConfig `mapstructure:"translation" yaml:"translation"`

	// Synthesis writes the final answer.
	Synthesis llm.SlotConfig `mapstructure:"synthesis" yaml:"synthesis"`

	// Multimodal answers over process-flow subgraphs.
	Multimodal llm.SlotConfig `mapstructure:"multimodal" yaml:"multimodal"`
}

// RetrievalConfig contains per-strategy retrieval settings.
type RetrievalConfig struct {
	// Strategy is the default strategy: cypher, vector, vector-graph or subgraph.
	Strategy string `mapstructure:"strategy" yaml:"strategy" validate:"required,oneof=cypher vector vector-graph subgraph"`

	// Schema, when set, is used verbatim instead of introspecting the database.
	Schema string `mapstructure:"schema" yaml:"schema"`

	Cypher      CypherSettings   `mapstructure:"cypher" yaml:"cypher"`
	Vector      VectorSettings   `mapstructure:"vector" yaml:"vector"`
	VectorGraph VectorSettings   `mapstructure:"vector_graph" yaml:"vector_graph"`
	Subgraph    SubgraphSettings `mapstructure:"subgraph" yaml:"subgraph"`
}

// CypherSettings configures the structured-query strategy.
type CypherSettings struct {
	MaxRecords int    `mapstructure:"max_records" yaml:"max_records" validate:"min=1"`
	Format     string `mapstructure:"format" yaml:"format" validate:"oneof=json yaml"`
}

// VectorSettings configures a vector index lookup.
type VectorSettings struct {
	Index  string `mapstructure:"index" yaml:"index" validate:"required"`
	K      int    `mapstructure:"k" yaml:"k" validate:"min=1"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json yaml"`
}

// SubgraphSettings configures vector lookup plus subgraph expansion.
type SubgraphSettings struct {
	Index        string `mapstructure:"index" yaml:"index" validate:"required"`
	K            int    `mapstructure:"k" yaml:"k" validate:"min=1"`
	MaxDepth     int    `mapstructure:"max_depth" yaml:"max_depth" validate:"min=1"`
	Limit        int    `mapstructure:"limit" yaml:"limit" validate:"min=1"`
	ExcludeLabel string `mapstructure:"exclude_label" yaml:"exclude_label"`
	Format       string `mapstructure:"format" yaml:"format" validate:"oneof=json yaml"`
}

// PipelineConfig contains retry and decoding settings.
type PipelineConfig struct {
	Attempts     int            `mapstructure:"attempts" yaml:"attempts" validate:"min=1,max=100"`
	Delay        time.Duration  `mapstructure:"delay" yaml:"delay" validate:"min=0"`
	HistoryAware bool           `mapstructure:"history_aware" yaml:"history_aware"`
	Decoding     DecodingConfig `mapstructure:"decoding" yaml:"decoding"`
}

// DecodingConfig holds the sampling parameters of each model call.
type DecodingConfig struct {
	// Translation is used for question-to-Cypher generation.
	Translation llm.DecodingParams `mapstructure:"translation" yaml:"translation"`

	// Answer is used for answers over Cypher results.
	Answer llm.DecodingParams `mapstructure:"answer" yaml:"answer"`

	// Document is used for answers over vector and subgraph contexts.
	Document llm.DecodingParams `mapstructure:"document" yaml:"document"`
}

// ConversationConfig contains session history settings.
type ConversationConfig struct {
	// Window is how many past exchanges are fed into a new question.
	Window int `mapstructure:"window" yaml:"window" validate:"min=0"`

	// MaxExchanges caps retained history; 0 keeps everything.
	MaxExchanges int `mapstructure:"max_exchanges" yaml:"max_exchanges" validate:"min=0"`

	// HistorySource is "answers" or "contexts".
	HistorySource string `mapstructure:"history_source" yaml:"history_source" validate:"oneof=answers contexts"`

	// Store is "memory" or "redis".
	Store string        `mapstructure:"store" yaml:"store" validate:"oneof=memory redis"`
	Redis RedisConfig   `mapstructure:"redis" yaml:"redis"`
	TTL   time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"min=0"`
}

// RedisConfig contains Redis connection settings for the session store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db" validate:"min=0"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// CacheConfig controls the in-memory LLM response cache.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Size    int  `mapstructure:"size" yaml:"size" validate:"min=0"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`
}
