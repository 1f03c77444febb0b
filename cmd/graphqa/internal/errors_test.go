package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/pipeline"
	"github.com/zero-day-ai/graphqa/internal/types"
)

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().BoolP("verbose", "v", false, "")
	cmd.SetErr(&buf)
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestCLIError(t *testing.T) {
	assert.Equal(t, "something went wrong", NewCLIError(ExitError, "something went wrong").Error())

	cause := errors.New("underlying error")
	wrapped := WrapError(ExitConfigError, "operation failed", cause)
	assert.Equal(t, "operation failed: underlying error", wrapped.Error())
	assert.Equal(t, ExitConfigError, wrapped.Code)
	assert.ErrorIs(t, wrapped, cause)
}

func TestHandleError(t *testing.T) {
	failure := &pipeline.FailureError{
		Strategy: "cypher",
		Attempts: 5,
		Elapsed:  20 * time.Second,
		Cause:    errors.New("quota exceeded"),
	}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"nil", nil, ExitSuccess, ""},
		{"cancelled", fmt.Errorf("ask: %w", context.Canceled), ExitCancelled, "Operation cancelled"},
		{"deadline", context.DeadlineExceeded, ExitTimeout, "Operation timed out"},
		{"cli error", NewCLIError(ExitConfigError, "bad flag"), ExitConfigError, "Error: bad flag"},
		{"pipeline failure", failure, ExitPipelineFailure, "cypher pipeline failed after 5 attempt(s)"},
		{"config", types.NewError(types.CONFIG_VALIDATION_FAILED, "neo4j.uri is required"), ExitConfigError, "neo4j.uri is required"},
		{"graph", types.NewError(graph.ErrCodeGraphConnectionFailed, "dial failed"), ExitDatabaseError, "dial failed"},
		{"generic", errors.New("boom"), ExitError, "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, buf := newTestCommand()
			assert.Equal(t, tt.wantCode, HandleError(cmd, tt.err))
			assert.Contains(t, buf.String(), tt.wantOut)
		})
	}
}

func TestHandleError_VerboseShowsCause(t *testing.T) {
	cmd, buf := newTestCommand()
	err := WrapError(ExitError, "ask failed", errors.New("provider unavailable"))

	HandleError(cmd, err)
	assert.NotContains(t, buf.String(), "provider unavailable")

	buf.Reset()
	_ = cmd.Flags().Set("verbose", "true")
	HandleError(cmd, err)
	assert.Contains(t, buf.String(), "Cause: provider unavailable")
}
