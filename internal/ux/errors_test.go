package ux

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/resource"
)

func TestNewErrorReport(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, ErrorReport{}, NewErrorReport(nil))
	})

	t.Run("planning error", func(t *testing.T) {
		err := &planner.PlanningError{
			Root:         "Mission",
			LastConflict: &resource.ConflictError{Resource: "memory", Required: 4096, Available: 500},
		}
		r := NewErrorReport(err)
		assert.Equal(t, errors.ErrCodeNoFeasiblePlan, r.Code)
		assert.Contains(t, r.Message, "insufficient memory: 4096/500")
		assert.NotEmpty(t, r.Suggestions)
	})

	t.Run("wrapped mission error keeps cause", func(t *testing.T) {
		err := errors.NewMissionInvalidError("root is required", stderrors.New("empty document"))
		r := NewErrorReport(err)
		assert.Equal(t, errors.ErrCodeMissionInvalid, r.Code)
		assert.Equal(t, "invalid mission: root is required: empty document", r.Message)
	})

	t.Run("plain error", func(t *testing.T) {
		r := NewErrorReport(stderrors.New("boom"))
		assert.Equal(t, errors.ErrCodeUnknown, r.Code)
		assert.Equal(t, "boom", r.Message)
	})
}

func TestErrorReport_RenderText(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})
	require.NoError(t, err)

	report := ErrorReport{
		Code:        errors.ErrCodeCircularDependency,
		Message:     "circular dependency detected: a -> b -> a",
		Suggestions: []string{"Remove the edge that closes the cycle shown above"},
		DocsURL:     "https://example.com/docs",
	}
	require.NoError(t, f.Format(report))

	assert.Equal(t, "✗ TREE-001 circular dependency detected: a -> b -> a\n\n"+
		"Suggestions:\n  • Remove the edge that closes the cycle shown above\n\n"+
		"Documentation: https://example.com/docs\n", buf.String())
}

func TestErrorReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("json", &FormatterOptions{Writer: &buf, Compact: true})
	require.NoError(t, err)
	require.NoError(t, f.Format(ErrorReport{Code: errors.ErrCodeBudgetExceeded, Message: "planning budget exceeded: 10 expansions"}))
	assert.Equal(t, `{"code":"PLAN-002","message":"planning budget exceeded: 10 expansions"}`+"\n", buf.String())
}
