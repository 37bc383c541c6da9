package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NodeID is the caller-assigned identifier of a task node. Any printable
// text is accepted, so ids like "1-fetch" or "Acquire Data" round-trip from
// mission files unchanged.
type NodeID string

// maxNodeIDLength is the maximum allowed length for a node ID, in bytes
const maxNodeIDLength = 128

// NewNodeID creates a new NodeID value object with validation
func NewNodeID(value string) (NodeID, error) {
	id := NodeID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks that the ID is non-empty, bounded, valid UTF-8 and free of
// control characters, which would break line-oriented output and traces.
func (n NodeID) Validate() error {
	s := string(n)

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("node ID cannot be empty")
	}

	if len(s) > maxNodeIDLength {
		return fmt.Errorf("node ID %q exceeds maximum length of %d characters", s, maxNodeIDLength)
	}

	if !utf8.ValidString(s) {
		return fmt.Errorf("node ID %q is not valid UTF-8", s)
	}

	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return fmt.Errorf("node ID %q must not contain control characters", s)
	}

	return nil
}

// String returns the string representation
func (n NodeID) String() string {
	return string(n)
}

// Equals checks if this node ID equals another
func (n NodeID) Equals(other NodeID) bool {
	return n == other
}
