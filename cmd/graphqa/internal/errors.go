package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/pipeline"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration error
	ExitConfigError = 10
	// ExitDatabaseError indicates the graph database could not be reached or queried
	ExitDatabaseError = 12
	// ExitPipelineFailure indicates every answer attempt failed
	ExitPipelineFailure = 13
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// HandleError prints err to the command's error output and returns the
// exit code for it.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil && verboseSet(cmd) {
			cmd.PrintErrln("Cause:", cliErr.Cause)
		}
		return cliErr.Code
	}

	if f, ok := pipeline.AsFailure(err); ok {
		cmd.PrintErrf("Error: %s pipeline failed after %d attempt(s)\n", f.Strategy, f.Attempts)
		if verboseSet(cmd) {
			cmd.PrintErrln("Cause:", f.Cause)
		}
		return ExitPipelineFailure
	}

	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	cmd.PrintErrln("Error:", err)
	return ExitCodeFor(err)
}

// ExitCodeFor maps a structured error to an exit code.
func ExitCodeFor(err error) int {
	switch types.CodeOf(err) {
	case types.CONFIG_LOAD_FAILED, types.CONFIG_PARSE_FAILED,
		types.CONFIG_VALIDATION_FAILED, types.CONFIG_NOT_FOUND:
		return ExitConfigError
	case graph.ErrCodeGraphConnectionFailed, graph.ErrCodeGraphConnectionClosed,
		graph.ErrCodeGraphInvalidConfig, graph.ErrCodeGraphQueryFailed,
		graph.ErrCodeGraphSchemaFailed, graph.ErrCodeGraphVectorSearchFailed:
		return ExitDatabaseError
	case pipeline.ErrCodePipelineFailed:
		return ExitPipelineFailure
	}
	return ExitError
}

func verboseSet(cmd *cobra.Command) bool {
	f := cmd.Flag("verbose")
	return f != nil && f.Changed
}

// IsVerbose checks if verbose mode is enabled via environment variable or flag.
// It is used by panic recovery, before flags are parsed.
func IsVerbose() bool {
	if os.Getenv("GRAPHQA_VERBOSE") != "" {
		return true
	}
	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}
