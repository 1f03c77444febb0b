package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zero-day-ai/graphqa/internal/types"
)

type bypassCacheKey struct{}

// WithoutCache marks ctx so a CachingProvider skips its lookup and always
// asks the wrapped provider. The fresh response still replaces the cached
// one.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassCacheKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(bypassCacheKey{}).(bool)
	return v
}

// CachingProvider serves repeated identical requests from an in-memory LRU.
// Only successful responses are cached.
type CachingProvider struct {
	inner LLMProvider
	cache *lru.Cache[string, CompletionResponse]
}

// NewCachingProvider wraps inner with a cache holding up to size responses.
func NewCachingProvider(inner LLMProvider, size int) (*CachingProvider, error) {
	cache, err := lru.New[string, CompletionResponse](size)
	if err != nil {
		return nil, types.WrapError(ErrProviderInitFailed, "failed to create response cache", err)
	}
	return &CachingProvider{inner: inner, cache: cache}, nil
}

// Name returns the wrapped provider's name.
func (c *CachingProvider) Name() string {
	return c.inner.Name()
}

// Complete returns a cached response when the exact request was seen before,
// unless ctx was marked with WithoutCache.
func (c *CachingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	key, err := cacheKey(req)
	if err != nil {
		return c.inner.Complete(ctx, req)
	}

	if !cacheBypassed(ctx) {
		if resp, ok := c.cache.Get(key); ok {
			return &resp, nil
		}
	}

	resp, err := c.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Message.Content != "" {
		c.cache.Add(key, *resp)
	}
	return resp, nil
}

// Health delegates to the wrapped provider.
func (c *CachingProvider) Health(ctx context.Context) types.HealthStatus {
	return c.inner.Health(ctx)
}

// Len returns the number of cached responses.
func (c *CachingProvider) Len() int {
	return c.cache.Len()
}

func cacheKey(req CompletionRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
