package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// Pipeline error codes
const (
	ErrCodePipelineFailed types.ErrorCode = "PIPELINE_FAILED"
	ErrCodeInvalidInput   types.ErrorCode = "PIPELINE_INVALID_INPUT"
	ErrCodeInvalidConfig  types.ErrorCode = "PIPELINE_INVALID_CONFIG"
)

// FailureError is returned when every attempt failed or the run was
// stopped. It matches ErrCodePipelineFailed under errors.Is and unwraps to
// the last attempt's error.
type FailureError struct {
	Strategy string
	Attempts int
	Elapsed  time.Duration
	Cause    error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("[%s] %s pipeline failed after %d attempt(s) in %s: %v",
		ErrCodePipelineFailed, e.Strategy, e.Attempts, e.Elapsed.Round(time.Millisecond), e.Cause)
}

func (e *FailureError) Unwrap() error {
	return e.Cause
}

// Is matches *types.Error targets carrying ErrCodePipelineFailed.
func (e *FailureError) Is(target error) bool {
	var t *types.Error
	return errors.As(target, &t) && t.Code == ErrCodePipelineFailed
}

// AsFailure extracts a *FailureError from err's chain.
func AsFailure(err error) (*FailureError, bool) {
	var f *FailureError
	ok := errors.As(err, &f)
	return f, ok
}
