package types

import (
	"time"
)

// HealthState represents the health state of a collaborator (graph database,
// model provider, embedder, session store).
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// String returns the string representation of HealthState
func (s HealthState) String() string {
	return string(s)
}

// HealthStatus is the result of a single health probe.
type HealthStatus struct {
	State     HealthState `json:"state"`
	Message   string      `json:"message,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}

// NewHealthStatus creates a new HealthStatus stamped with the current time.
func NewHealthStatus(state HealthState, message string) HealthStatus {
	return HealthStatus{
		State:     state,
		Message:   message,
		CheckedAt: time.Now(),
	}
}

// Healthy creates a new HealthStatus with HealthStateHealthy state.
func Healthy(message string) HealthStatus {
	return NewHealthStatus(HealthStateHealthy, message)
}

// Degraded creates a new HealthStatus with HealthStateDegraded state.
func Degraded(message string) HealthStatus {
	return NewHealthStatus(HealthStateDegraded, message)
}

// Unhealthy creates a new HealthStatus with HealthStateUnhealthy state.
func Unhealthy(message string) HealthStatus {
	return NewHealthStatus(HealthStateUnhealthy, message)
}

// IsHealthy returns true if the health state is healthy.
func (h HealthStatus) IsHealthy() bool {
	return h.State == HealthStateHealthy
}

// Worst folds several statuses into one, keeping the most severe state.
// Messages of non-healthy components are joined with "; ".
func Worst(statuses map[string]HealthStatus) HealthStatus {
	state := HealthStateHealthy
	msg := ""
	for name, s := range statuses {
		if s.State == HealthStateHealthy {
			continue
		}
		if s.State == HealthStateUnhealthy || state == HealthStateHealthy {
			state = s.State
		}
		if msg != "" {
			msg += "; "
		}
		msg += name + ": " + s.Message
	}
	return NewHealthStatus(state, msg)
}
