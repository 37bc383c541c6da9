package domain

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// genValidNodeID generates IDs accepted by NodeID.Validate
func genValidNodeID() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9][A-Za-z0-9 _./:#@-]{0,40}`)
}

// TestNodeID_ValidIDsAlwaysValidate tests that generated valid IDs always pass validation
func TestNodeID_ValidIDsAlwaysValidate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := genValidNodeID().Draw(t, "value")

		id, err := NewNodeID(value)
		if err != nil {
			t.Fatalf("valid ID %q should not produce error: %v", value, err)
		}
		if id.String() != value {
			t.Fatalf("String() should return original value: got %q, want %q", id.String(), value)
		}
	})
}

// TestNodeID_ControlCharacterFails tests that a control character anywhere in
// an otherwise valid ID fails
func TestNodeID_ControlCharacterFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := genValidNodeID().Draw(t, "value")
		ctrl := rapid.RuneFrom([]rune("\x00\t\n\r\x1b\x7f")).Draw(t, "ctrl")
		at := rapid.IntRange(0, len(value)).Draw(t, "at")

		err := NodeID(value[:at] + string(ctrl) + value[at:]).Validate()
		if err == nil {
			t.Fatalf("ID with control character %q should fail validation", ctrl)
		}
		if !strings.Contains(err.Error(), "control characters") {
			t.Fatalf("error should mention control characters: %v", err)
		}
	})
}

// TestNodeID_TooLongFails tests that IDs exceeding the maximum length fail
func TestNodeID_TooLongFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(maxNodeIDLength+1, 2*maxNodeIDLength).Draw(t, "length")

		err := NodeID(strings.Repeat("a", length)).Validate()
		if err == nil {
			t.Fatalf("ID of length %d should fail validation", length)
		}
		if !strings.Contains(err.Error(), "exceeds maximum length") {
			t.Fatalf("error should mention max length: %v", err)
		}
	})
}
