package embedder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// LangchainEmbedder adapts a langchaingo embeddings.Embedder.
type LangchainEmbedder struct {
	inner    embeddings.Embedder
	provider string
	model    string
	expected int
	seen     atomic.Int64
}

// NewLangchainEmbedder wraps inner. expectedDims of 0 disables the dimension check.
func NewLangchainEmbedder(inner embeddings.Embedder, provider, model string, expectedDims int) *LangchainEmbedder {
	e := &LangchainEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		expected: expectedDims,
	}
	e.seen.Store(int64(expectedDims))
	return e
}

// Embed generates an embedding vector for a single text.
func (e *LangchainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, types.WrapRetryableError(ErrCodeEmbeddingFailed,
			fmt.Sprintf("%s embedding failed", e.provider), err)
	}
	if err := e.checkDims(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *LangchainEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	vecs, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, types.WrapRetryableError(ErrCodeEmbeddingFailed,
			fmt.Sprintf("%s batch embedding failed", e.provider), err)
	}
	if len(vecs) != len(texts) {
		return nil, types.NewError(ErrCodeEmbeddingFailed,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(vecs)))
	}
	for _, v := range vecs {
		if err := e.checkDims(v); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

func (e *LangchainEmbedder) checkDims(vec []float32) error {
	if len(vec) == 0 {
		return types.NewError(ErrCodeEmbeddingFailed, "provider returned an empty vector")
	}
	if e.expected > 0 && len(vec) != e.expected {
		return types.NewError(ErrCodeEmbeddingFailed,
			fmt.Sprintf("expected %d dimensions, got %d", e.expected, len(vec)))
	}
	e.seen.Store(int64(len(vec)))
	return nil
}

// Dimensions returns the configured dimension, or the last observed one.
func (e *LangchainEmbedder) Dimensions() int {
	return int(e.seen.Load())
}

// Model returns the embedding model identifier.
func (e *LangchainEmbedder) Model() string {
	return e.model
}

// Health embeds a short probe string.
func (e *LangchainEmbedder) Health(ctx context.Context) types.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := e.Embed(ctx, "health check"); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy(fmt.Sprintf("%s/%s", e.provider, e.model))
}
