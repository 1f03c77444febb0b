package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// Metric names.
const (
	MetricPipelineAttempts        = "graphqa_pipeline_attempts_total"
	MetricPipelineAttemptDuration = "graphqa_pipeline_attempt_duration_seconds"
	MetricPipelineRuns            = "graphqa_pipeline_runs_total"
	MetricPipelineRunAttempts     = "graphqa_pipeline_run_attempts"
	MetricPipelineRunDuration     = "graphqa_pipeline_run_duration_seconds"
	MetricHealthStatus            = "graphqa_health_status"
	MetricHTTPRequests            = "graphqa_http_requests_total"
	MetricHTTPRequestDuration     = "graphqa_http_request_duration_seconds"
	MetricSessionsCreated         = "graphqa_sessions_created_total"
)

// OutcomeSuccess labels successful attempts and runs. Failures are labeled
// with their lower-cased error code, or "error" when there is none.
const OutcomeSuccess = "success"

// Metrics holds the Prometheus collectors of one process on a private
// registry. It satisfies pipeline.MetricsRecorder.
type Metrics struct {
	registry *prometheus.Registry

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	runAttempts     *prometheus.HistogramVec
	runDuration     *prometheus.HistogramVec
	health          *prometheus.GaugeVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	sessions        prometheus.Counter
}

// NewMetrics creates and registers all collectors, including the Go runtime
// and process collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPipelineAttempts,
			Help: "Answer pipeline attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricPipelineAttemptDuration,
			Help:    "Duration of a single answer pipeline attempt",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"strategy"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPipelineRuns,
			Help: "Answer pipeline runs by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		runAttempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricPipelineRunAttempts,
			Help:    "Attempts needed per answer pipeline run",
			Buckets: []float64{1, 2, 3, 4, 5, 10},
		}, []string{"strategy"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricPipelineRunDuration,
			Help:    "Total duration of an answer pipeline run including retry waits",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"strategy"}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricHealthStatus,
			Help: "1 when a component is healthy, 0 otherwise",
		}, []string{"component"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequests,
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSessionsCreated,
			Help: "Conversation sessions created",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.attempts, m.attemptDuration, m.runs, m.runAttempts, m.runDuration,
		m.health, m.httpRequests, m.httpDuration, m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, types.WrapError(ErrMetricsRegistration, "failed to register collector", err)
		}
	}
	return m, nil
}

// RecordAttempt records one pipeline attempt.
func (m *Metrics) RecordAttempt(strategy string, err error, elapsed time.Duration) {
	m.attempts.WithLabelValues(strategy, outcome(err)).Inc()
	m.attemptDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// RecordRun records a finished pipeline run.
func (m *Metrics) RecordRun(strategy string, attempts int, err error, elapsed time.Duration) {
	m.runs.WithLabelValues(strategy, outcome(err)).Inc()
	m.runAttempts.WithLabelValues(strategy).Observe(float64(attempts))
	m.runDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// RecordHealth sets the health gauge of a component.
func (m *Metrics) RecordHealth(component string, status types.HealthStatus) {
	v := 0.0
	if status.IsHealthy() {
		v = 1.0
	}
	m.health.WithLabelValues(component).Set(v)
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(route, method string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordSessionCreated counts a new conversation session.
func (m *Metrics) RecordSessionCreated() {
	m.sessions.Inc()
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if code := types.CodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}
