package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Tree structure errors (TREE-001 to TREE-099)
	ErrCodeCircularDependency ErrorCode = "TREE-001"
	ErrCodeUnknownNode        ErrorCode = "TREE-002"
	ErrCodeDuplicateNode      ErrorCode = "TREE-003"
	ErrCodeInvalidEdge        ErrorCode = "TREE-004"
	ErrCodeInvalidNode        ErrorCode = "TREE-005"

	// Resource errors (RES-001 to RES-099)
	ErrCodeResourceConflict ErrorCode = "RES-001"
	ErrCodeInvalidPool      ErrorCode = "RES-002"

	// Planning errors (PLAN-001 to PLAN-099)
	ErrCodeNoFeasiblePlan ErrorCode = "PLAN-001"
	ErrCodeBudgetExceeded ErrorCode = "PLAN-002"
	ErrCodeInvalidConfig  ErrorCode = "PLAN-003"

	// Mission document errors (MISSION-001 to MISSION-099)
	ErrCodeMissionInvalid ErrorCode = "MISSION-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"

	// ErrCodeUnknown is reported for errors that carry no code
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

// docsBase is the documentation root used by Describe
const docsBase = "https://github.com/felixgeelhaar/taskplan#"

// Coder is implemented by domain errors that map onto an ErrorCode
type Coder interface {
	ErrorCode() ErrorCode
}

// TaskplanError represents an enhanced error with code, suggestions, and documentation
type TaskplanError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *TaskplanError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *TaskplanError) Unwrap() error {
	return e.Cause
}

// ErrorCode implements Coder
func (e *TaskplanError) ErrorCode() ErrorCode {
	return e.Code
}

// New creates a new TaskplanError
func New(code ErrorCode, message string) *TaskplanError {
	return &TaskplanError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new TaskplanError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *TaskplanError {
	return &TaskplanError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *TaskplanError) WithSuggestion(suggestion string) *TaskplanError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *TaskplanError) WithSuggestions(suggestions ...string) *TaskplanError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *TaskplanError) WithDocs(url string) *TaskplanError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first Coder in err's chain, or ErrCodeUnknown
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var coder Coder
	if stderrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ErrCodeUnknown
}

// Describe wraps err in a TaskplanError carrying the suggestions for its code.
// A TaskplanError is returned unchanged.
func Describe(err error) *TaskplanError {
	if err == nil {
		return nil
	}

	var te *TaskplanError
	if stderrors.As(err, &te) {
		return te
	}

	code := CodeOf(err)
	out := &TaskplanError{Code: code, Message: err.Error()}

	switch code {
	case ErrCodeCircularDependency:
		out.WithSuggestion("Remove the edge that closes the cycle shown above").
			WithSuggestion("Run 'taskplan graph --format tree' to inspect the decomposition").
			WithDocs(docsBase + "cycle-guard")
	case ErrCodeUnknownNode:
		out.WithSuggestion("Check that every child and precondition references a declared task id")
	case ErrCodeDuplicateNode:
		out.WithSuggestion("Task ids must be unique within a mission")
	case ErrCodeInvalidEdge:
		out.WithSuggestion("Leaf tasks cannot have children; change the parent kind to 'and' or 'or'")
	case ErrCodeInvalidNode:
		out.WithSuggestion("Cost must be non-negative and risk must lie in [0, 1]")
	case ErrCodeResourceConflict:
		out.WithSuggestion("Increase the capacity of the named resource in the pool")
	case ErrCodeInvalidPool:
		out.WithSuggestion("Resource capacities must be non-negative integers")
	case ErrCodeNoFeasiblePlan:
		out.WithSuggestion("Raise the risk ceiling with --risk-ceiling").
			WithSuggestion("Increase resource capacities or add cheaper alternatives under 'or' tasks").
			WithSuggestion("Run with --trace-file to see why each option was rejected").
			WithDocs(docsBase + "planning")
	case ErrCodeBudgetExceeded:
		out.WithSuggestion("Increase --max-expansions or --timeout").
			WithSuggestion("Reduce fan-out of 'or' tasks")
	case ErrCodeInvalidConfig:
		out.WithSuggestion("Check the planner section of your configuration file")
	case ErrCodeMissionInvalid, ErrCodeFileUnmarshal:
		out.WithSuggestion("Run 'taskplan validate -f <file>' to see validation errors")
	}

	out.Cause = err
	out.Message = messageFor(code)
	return out
}

func messageFor(code ErrorCode) string {
	switch code {
	case ErrCodeCircularDependency:
		return "circular dependency in task graph"
	case ErrCodeUnknownNode:
		return "reference to unknown task"
	case ErrCodeDuplicateNode:
		return "duplicate task"
	case ErrCodeInvalidEdge:
		return "invalid decomposition edge"
	case ErrCodeInvalidNode:
		return "invalid task"
	case ErrCodeResourceConflict:
		return "resource conflict"
	case ErrCodeInvalidPool:
		return "invalid resource pool"
	case ErrCodeNoFeasiblePlan:
		return "planning failed"
	case ErrCodeBudgetExceeded:
		return "planning budget exceeded"
	case ErrCodeInvalidConfig:
		return "invalid planner configuration"
	case ErrCodeMissionInvalid:
		return "invalid mission document"
	default:
		return "operation failed"
	}
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *TaskplanError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileReadError creates a read failure error
func NewFileReadError(path string, cause error) *TaskplanError {
	return Wrap(ErrCodeFileReadFailed, fmt.Sprintf("failed to read file: %s", path), cause)
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *TaskplanError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// NewMissionInvalidError creates a mission validation error
func NewMissionInvalidError(details string, cause error) *TaskplanError {
	return Wrap(ErrCodeMissionInvalid, fmt.Sprintf("invalid mission: %s", details), cause).
		WithSuggestion("Run 'taskplan validate -f <file>' to see validation errors").
		WithDocs(docsBase + "mission-documents")
}
