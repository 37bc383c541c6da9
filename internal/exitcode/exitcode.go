package exitcode

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// InvalidMission indicates a malformed mission: cycles, unknown or duplicate
	// nodes, bad edges, bad pools or unparseable documents
	InvalidMission = 3

	// NoFeasiblePlan indicates the search exhausted every option
	NoFeasiblePlan = 4

	// BudgetExceeded indicates the expansion limit or timeout stopped the search
	BudgetExceeded = 5

	// Interrupted indicates the run was canceled by a signal
	Interrupted = 130
)

// usage marks errors caused by how the CLI was invoked
type usage struct{ err error }

func (u *usage) Error() string { return u.err.Error() }
func (u *usage) Unwrap() error { return u.err }

// Usage marks err as a usage error
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &usage{err: err}
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to the exit code of its class. Typed errors
// are classified by their code; untyped cobra errors by their message.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	var u *usage
	if stderrors.As(err, &u) {
		return UsageError
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeCircularDependency,
		errors.ErrCodeUnknownNode,
		errors.ErrCodeDuplicateNode,
		errors.ErrCodeInvalidEdge,
		errors.ErrCodeInvalidNode,
		errors.ErrCodeInvalidPool,
		errors.ErrCodeMissionInvalid,
		errors.ErrCodeFileUnmarshal:
		return InvalidMission
	case errors.ErrCodeNoFeasiblePlan, errors.ErrCodeResourceConflict:
		return NoFeasiblePlan
	case errors.ErrCodeBudgetExceeded:
		return BudgetExceeded
	case errors.ErrCodeInvalidConfig:
		return UsageError
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") ||
		strings.Contains(errMsg, "unknown shorthand flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts ") ||
		strings.Contains(errMsg, "invalid argument") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case InvalidMission:
		return "Invalid mission"
	case NoFeasiblePlan:
		return "No feasible plan"
	case BudgetExceeded:
		return "Planning budget exceeded"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
