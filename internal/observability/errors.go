package observability

import (
	"github.com/zero-day-ai/graphqa/internal/types"
)

// Observability error codes
const (
	ErrExporterConnection  types.ErrorCode = "OBSERVABILITY_EXPORTER_CONNECTION"
	ErrMetricsRegistration types.ErrorCode = "OBSERVABILITY_METRICS_REGISTRATION"
	ErrInvalidConfig       types.ErrorCode = "OBSERVABILITY_INVALID_CONFIG"
)

// NewExporterConnectionError wraps a failure to reach a telemetry exporter.
// Connection failures are usually transient.
func NewExporterConnectionError(endpoint string, cause error) *types.Error {
	return types.WrapRetryableError(ErrExporterConnection, "failed to connect to exporter at "+endpoint, cause)
}

// NewInvalidConfigError creates an error for invalid observability settings.
func NewInvalidConfigError(message string) *types.Error {
	return types.NewError(ErrInvalidConfig, message)
}
