package observability

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/zero-day-ai/graphqa/internal/types"
	"golang.org/x/sync/errgroup"
)

// HealthChecker defines the interface that components must implement to be monitored.
type HealthChecker interface {
	// Health returns the current health status of the component.
	Health(ctx context.Context) types.HealthStatus
}

// HealthCheckerFunc adapts a function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) types.HealthStatus

// Health calls f.
func (f HealthCheckerFunc) Health(ctx context.Context) types.HealthStatus {
	return f(ctx)
}

// HealthRecorder receives every probe result. *Metrics implements it.
type HealthRecorder interface {
	RecordHealth(component string, status types.HealthStatus)
}

type componentState struct {
	checker    HealthChecker
	lastStatus types.HealthStatus
}

// HealthMonitor checks registered components and logs state transitions.
// It is safe for concurrent use.
type HealthMonitor struct {
	mu         sync.RWMutex
	components map[string]*componentState
	recorder   HealthRecorder
	logger     *slog.Logger
	timeout    time.Duration
}

// NewHealthMonitor creates a monitor. recorder may be nil.
func NewHealthMonitor(recorder HealthRecorder, logger *slog.Logger) *HealthMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthMonitor{
		components: make(map[string]*componentState),
		recorder:   recorder,
		logger:     logger,
		timeout:    10 * time.Second,
	}
}

// Register adds or replaces a component.
func (h *HealthMonitor) Register(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Start unhealthy so the first healthy probe is logged as a transition.
	h.components[name] = &componentState{
		checker:    checker,
		lastStatus: types.Unhealthy("not yet checked"),
	}
}

// Components returns the registered names, sorted.
func (h *HealthMonitor) Components() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.components))
	for name := range h.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckAll checks every component concurrently. Each checker gets a context
// bounded by the monitor's timeout and is expected to honor it.
func (h *HealthMonitor) CheckAll(ctx context.Context) map[string]types.HealthStatus {
	h.mu.RLock()
	names := make([]string, 0, len(h.components))
	states := make([]*componentState, 0, len(h.components))
	for name, state := range h.components {
		names = append(names, name)
		states = append(states, state)
	}
	h.mu.RUnlock()

	// Each goroutine owns one slot, so no lock is needed.
	statuses := make([]types.HealthStatus, len(names))

	g, gCtx := errgroup.WithContext(ctx)
	for i := range names {
		i := i
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(gCtx, h.timeout)
			defer cancel()

			statuses[i] = states[i].checker.Health(checkCtx)
			h.update(ctx, names[i], states[i], statuses[i])
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]types.HealthStatus, len(names))
	for i, name := range names {
		results[name] = statuses[i]
	}
	return results
}

// Overall probes all components and folds the results into one status.
func (h *HealthMonitor) Overall(ctx context.Context) (types.HealthStatus, map[string]types.HealthStatus) {
	results := h.CheckAll(ctx)
	return types.Worst(results), results
}

func (h *HealthMonitor) update(ctx context.Context, name string, state *componentState, status types.HealthStatus) {
	h.mu.Lock()
	previous := state.lastStatus.State
	state.lastStatus = status
	h.mu.Unlock()

	if h.recorder != nil {
		h.recorder.RecordHealth(name, status)
	}

	if previous == status.State {
		return
	}

	args := []any{
		"component", name,
		"previous_state", string(previous),
		"current_state", string(status.State),
		"message", status.Message,
	}
	switch {
	case previous == types.HealthStateHealthy:
		h.logger.ErrorContext(ctx, "component health degraded", args...)
	case status.IsHealthy():
		h.logger.InfoContext(ctx, "component health recovered", args...)
	default:
		h.logger.WarnContext(ctx, "component health changed", args...)
	}
}
