package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type codedErr struct{ code ErrorCode }

func (c *codedErr) Error() string        { return "coded failure" }
func (c *codedErr) ErrorCode() ErrorCode { return c.code }

func TestNew(t *testing.T) {
	err := New(ErrCodeNoFeasiblePlan, "test error message")

	if err.Code != ErrCodeNoFeasiblePlan {
		t.Errorf("expected code %s, got %s", ErrCodeNoFeasiblePlan, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code)
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *TaskplanError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeMissionInvalid, "invalid mission"),
			wantCode: "MISSION-001",
			wantMsg:  "invalid mission",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeFileReadFailed, "read failed", fmt.Errorf("permission denied")),
			wantCode: "IO-002",
			wantMsg:  "permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestionsAndDocs(t *testing.T) {
	err := New(ErrCodeBudgetExceeded, "budget").
		WithSuggestion("first").
		WithSuggestions("second", "third").
		WithDocs("https://example.com/docs")

	if len(err.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(err.Suggestions))
	}

	s := err.Error()
	for _, want := range []string{"Suggestions:", "• first", "• third", "Documentation: https://example.com/docs"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", fmt.Errorf("boom"), ErrCodeUnknown},
		{"coder", &codedErr{code: ErrCodeCircularDependency}, ErrCodeCircularDependency},
		{"wrapped coder", fmt.Errorf("context: %w", &codedErr{code: ErrCodeResourceConflict}), ErrCodeResourceConflict},
		{"taskplan error", New(ErrCodeInvalidPool, "bad"), ErrCodeInvalidPool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if Describe(nil) != nil {
		t.Fatal("Describe(nil) should be nil")
	}

	cause := &codedErr{code: ErrCodeNoFeasiblePlan}
	described := Describe(fmt.Errorf("run failed: %w", cause))

	if described.Code != ErrCodeNoFeasiblePlan {
		t.Errorf("expected code %s, got %s", ErrCodeNoFeasiblePlan, described.Code)
	}
	if len(described.Suggestions) == 0 {
		t.Error("expected suggestions for an infeasible plan")
	}
	if !errors.Is(described, cause) {
		t.Error("described error should unwrap to its cause")
	}

	existing := New(ErrCodeFileNotFound, "missing")
	if Describe(existing) != existing {
		t.Error("Describe should return an existing TaskplanError unchanged")
	}
}

func TestFileErrorConstructors(t *testing.T) {
	nf := NewFileNotFoundError("mission.yaml")
	if nf.Code != ErrCodeFileNotFound || !strings.Contains(nf.Message, "mission.yaml") {
		t.Errorf("unexpected not-found error: %+v", nf)
	}

	cause := fmt.Errorf("yaml: line 3")
	ue := NewFileUnmarshalError("mission.yaml", "YAML", cause)
	if ue.Code != ErrCodeFileUnmarshal || !errors.Is(ue, cause) {
		t.Errorf("unexpected unmarshal error: %+v", ue)
	}
	if len(ue.Suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %d", len(ue.Suggestions))
	}

	mi := NewMissionInvalidError("root missing", nil)
	if mi.Code != ErrCodeMissionInvalid || mi.DocsURL == "" {
		t.Errorf("unexpected mission error: %+v", mi)
	}
}
