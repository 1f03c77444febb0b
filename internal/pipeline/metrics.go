package pipeline

import "time"

// MetricsRecorder receives per-attempt and per-run measurements.
type MetricsRecorder interface {
	RecordAttempt(strategy string, err error, elapsed time.Duration)
	RecordRun(strategy string, attempts int, err error, elapsed time.Duration)
}

// NoOpMetricsRecorder discards everything.
type NoOpMetricsRecorder struct{}

func (NoOpMetricsRecorder) RecordAttempt(string, error, time.Duration) {}

func (NoOpMetricsRecorder) RecordRun(string, int, error, time.Duration) {}
