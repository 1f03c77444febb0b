package pipeline

// State is a step of a pipeline run.
type State string

const (
	StateIdle              State = "idle"
	StateAssemblingContext State = "assembling_context"
	StateAwaitingModel     State = "awaiting_model"
	StateRetrying          State = "retrying"
	StateCompleted         State = "completed"
	StateFailed            State = "failed"
)

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}
