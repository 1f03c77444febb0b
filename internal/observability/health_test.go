package observability

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/internal/types"
)

type recordedHealth struct {
	mu       sync.Mutex
	statuses map[string]types.HealthStatus
}

func (r *recordedHealth) RecordHealth(component string, status types.HealthStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[component] = status
}

func TestHealthMonitor_Overall(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, slog.LevelDebug))

	rec := &recordedHealth{statuses: map[string]types.HealthStatus{}}
	h := NewHealthMonitor(rec, logger)

	neo4jState := types.Healthy("connected")
	h.Register("neo4j", HealthCheckerFunc(func(ctx context.Context) types.HealthStatus { return neo4jState }))
	h.Register("llm", HealthCheckerFunc(func(ctx context.Context) types.HealthStatus { return types.Healthy("ok") }))

	assert.Equal(t, []string{"llm", "neo4j"}, h.Components())

	overall, parts := h.Overall(context.Background())
	assert.True(t, overall.IsHealthy())
	assert.Len(t, parts, 2)
	assert.Len(t, rec.statuses, 2)
	assert.Contains(t, buf.String(), "component health recovered")

	buf.Reset()
	neo4jState = types.Unhealthy("connection refused")
	overall, _ = h.Overall(context.Background())
	assert.Equal(t, types.HealthStateUnhealthy, overall.State)
	assert.Contains(t, overall.Message, "neo4j: connection refused")
	assert.Contains(t, buf.String(), "component health degraded")
	assert.False(t, rec.statuses["neo4j"].IsHealthy())

	// unchanged state is not logged again
	buf.Reset()
	h.CheckAll(context.Background())
	assert.Empty(t, buf.String())
}

func TestHealthMonitor_Empty(t *testing.T) {
	h := NewHealthMonitor(nil, nil)
	overall, parts := h.Overall(context.Background())
	require.Empty(t, parts)
	assert.True(t, overall.IsHealthy())
}

func TestHealthMonitor_CheckAllRunsConcurrently(t *testing.T) {
	h := NewHealthMonitor(nil, nil)
	h.timeout = 2 * time.Second

	// Each checker is healthy only once all three are running at the same
	// time, so a sequential CheckAll reports them unhealthy.
	var running atomic.Int32
	for _, name := range []string{"neo4j", "llm", "embedder"} {
		h.Register(name, HealthCheckerFunc(func(ctx context.Context) types.HealthStatus {
			running.Add(1)
			for running.Load() < 3 {
				select {
				case <-ctx.Done():
					return types.Unhealthy("checked alone")
				case <-time.After(time.Millisecond):
				}
			}
			return types.Healthy("ok")
		}))
	}

	results := h.CheckAll(context.Background())
	require.Len(t, results, 3)
	for name, status := range results {
		assert.True(t, status.IsHealthy(), name)
	}
}

func TestHealthMonitor_CheckTimeout(t *testing.T) {
	h := NewHealthMonitor(nil, nil)
	h.timeout = 20 * time.Millisecond

	h.Register("neo4j", HealthCheckerFunc(func(ctx context.Context) types.HealthStatus {
		<-ctx.Done()
		return types.Unhealthy(ctx.Err().Error())
	}))
	h.Register("llm", HealthCheckerFunc(func(ctx context.Context) types.HealthStatus {
		return types.Healthy("ok")
	}))

	start := time.Now()
	overall, parts := h.Overall(context.Background())
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, types.HealthStateUnhealthy, overall.State)
	assert.Contains(t, parts["neo4j"].Message, "deadline exceeded")
	assert.True(t, parts["llm"].IsHealthy())
}
