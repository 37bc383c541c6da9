package domain

import (
	"fmt"
	"strings"
)

// Status is the execution status of a task node.
// The planner only reads it; advancing it belongs to an execution tracker.
type Status int

const (
	// StatusPending is the zero value; only pending nodes are scored
	StatusPending Status = iota
	StatusScheduled
	StatusCompleted
	StatusFailed
)

// ParseStatus parses the textual form of a status. Empty input yields StatusPending.
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "pending":
		return StatusPending, nil
	case "scheduled":
		return StatusScheduled, nil
	case "completed":
		return StatusCompleted, nil
	case "failed":
		return StatusFailed, nil
	default:
		return 0, fmt.Errorf("invalid status %q: must be pending, scheduled, completed, or failed", value)
	}
}

// String returns the canonical lowercase name
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusScheduled:
		return "scheduled"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsPending reports whether the node still awaits execution
func (s Status) IsPending() bool {
	return s == StatusPending
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
