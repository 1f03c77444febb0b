package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// MockCall represents a recorded method call on the mock embedder.
type MockCall struct {
	Method    string
	Args      []interface{}
	Timestamp time.Time
}

// MockEmbedder generates deterministic embeddings from a SHA-256 of the
// text, so the same text always maps to the same unit vector.
type MockEmbedder struct {
	mu           sync.RWMutex
	dimensions   int
	model        string
	calls        []MockCall
	embedError   error
	healthStatus types.HealthStatus
}

// NewMockEmbedder creates a mock embedder with Titan's 1536 dimensions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		dimensions:   1536,
		model:        "mock-embedder",
		calls:        make([]MockCall, 0),
		healthStatus: types.Healthy("mock embedder"),
	}
}

// Embed generates a deterministic embedding for a single text.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{
		Method:    "Embed",
		Args:      []interface{}{text},
		Timestamp: time.Now(),
	})

	if m.embedError != nil {
		return nil, m.embedError
	}
	return m.generateEmbedding(text), nil
}

// EmbedBatch generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{
		Method:    "EmbedBatch",
		Args:      []interface{}{texts},
		Timestamp: time.Now(),
	})

	if m.embedError != nil {
		return nil, m.embedError
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.generateEmbedding(text)
	}
	return out, nil
}

// generateEmbedding seeds a PRNG with the text hash and emits a unit vector.
func (m *MockEmbedder) generateEmbedding(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(hash[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float64, m.dimensions)
	var sum float64
	for i := range vec {
		vec[i] = (rng.Float64() * 2) - 1
		sum += vec[i] * vec[i]
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		if norm == 0 {
			out[i] = float32(v)
			continue
		}
		out[i] = float32(v / norm)
	}
	return out
}

// Dimensions returns the dimensionality of the embedding vectors.
func (m *MockEmbedder) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}

// Model returns the name of the mock embedding model.
func (m *MockEmbedder) Model() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.model
}

// Health returns the configured health status.
func (m *MockEmbedder) Health(ctx context.Context) types.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthStatus
}

// SetDimensions changes the embedding length.
func (m *MockEmbedder) SetDimensions(dims int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = dims
}

// SetEmbedError configures Embed and EmbedBatch to fail.
func (m *MockEmbedder) SetEmbedError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedError = err
}

// SetHealthStatus configures what Health() returns.
func (m *MockEmbedder) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// GetCallsByMethod returns all calls to a specific method.
func (m *MockEmbedder) GetCallsByMethod(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, 0)
	for _, call := range m.calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}
