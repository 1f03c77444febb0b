package observability

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/internal/pipeline"
	"github.com/zero-day-ai/graphqa/internal/types"
)

var _ pipeline.MetricsRecorder = (*Metrics)(nil)

func TestMetrics_PipelineCounters(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	failure := types.NewRetryableError("RETRIEVAL_FAILED", "db down")
	m.RecordAttempt("cypher", failure, 10*time.Millisecond)
	m.RecordAttempt("cypher", nil, 20*time.Millisecond)
	m.RecordRun("cypher", 2, nil, 5*time.Second)
	m.RecordRun("vector", 5, errors.New("boom"), 25*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("cypher", "retrieval_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("cypher", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("cypher", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("vector", "error")))
}

func TestMetrics_HealthAndSessions(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.RecordHealth("neo4j", types.Healthy("ok"))
	m.RecordHealth("llm", types.Unhealthy("down"))
	m.RecordSessionCreated()
	m.RecordSessionCreated()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.health.WithLabelValues("neo4j")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.health.WithLabelValues("llm")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessions))
}

func TestMetrics_Handler(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.RecordHTTPRequest("/v1/sessions", http.MethodPost, http.StatusCreated, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), MetricHTTPRequests)
	assert.Contains(t, string(body), `code="201"`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	_, err := NewMetrics()
	require.NoError(t, err)
	_, err = NewMetrics()
	require.NoError(t, err)
}
