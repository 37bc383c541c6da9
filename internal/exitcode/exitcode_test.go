package exitcode

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	tperrors "github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"InvalidMission", InvalidMission, 3},
		{"NoFeasiblePlan", NoFeasiblePlan, 4},
		{"BudgetExceeded", BudgetExceeded, 5},
		{"Interrupted", Interrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	conflict := &resource.ConflictError{Resource: "memory", Required: 4096, Available: 500}

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "cycle",
			err:      &tree.CircularDependencyError{Node: "a", Path: []domain.NodeID{"a", "b", "a"}},
			expected: InvalidMission,
		},
		{
			name:     "unknown node",
			err:      &tree.UnknownNodeError{ID: "ghost"},
			expected: InvalidMission,
		},
		{
			name:     "wrapped mission error",
			err:      tperrors.NewMissionInvalidError("task graph", &tree.UnknownNodeError{ID: "ghost"}),
			expected: InvalidMission,
		},
		{
			name:     "infeasible",
			err:      &planner.PlanningError{Root: "Mission", LastConflict: conflict},
			expected: NoFeasiblePlan,
		},
		{
			name:     "infeasible wrapped",
			err:      fmt.Errorf("plan mission.yaml: %w", &planner.PlanningError{Root: "Mission"}),
			expected: NoFeasiblePlan,
		},
		{
			name:     "expansion budget",
			err:      &planner.BudgetExceededError{Limit: planner.LimitExpansions, Expansions: 10},
			expected: BudgetExceeded,
		},
		{
			name:     "timeout",
			err:      &planner.BudgetExceededError{Limit: planner.LimitTimeout, Cause: context.DeadlineExceeded},
			expected: BudgetExceeded,
		},
		{
			name:     "signal",
			err:      &planner.BudgetExceededError{Limit: planner.LimitCanceled, Cause: context.Canceled},
			expected: Interrupted,
		},
		{
			name:     "config",
			err:      &planner.ConfigError{Field: "risk_ceiling", Reason: "must lie in [0, 1]"},
			expected: UsageError,
		},
		{
			name:     "marked usage",
			err:      Usage(errors.New("--format must be text, json or yaml")),
			expected: UsageError,
		},
		{
			name:     "cobra unknown flag",
			err:      errors.New("unknown flag: --bogus"),
			expected: UsageError,
		},
		{
			name:     "cobra arg count",
			err:      errors.New("accepts 1 arg(s), received 2"),
			expected: UsageError,
		},
		{
			name:     "file not found",
			err:      tperrors.NewFileNotFoundError("mission.yaml"),
			expected: GeneralError,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetermineExitCode(tt.err)
			if result != tt.expected {
				t.Errorf("DetermineExitCode(%v) = %d, want %d", tt.err, result, tt.expected)
			}
		})
	}
}

func TestUsageNil(t *testing.T) {
	if Usage(nil) != nil {
		t.Error("Usage(nil) should be nil")
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{UsageError, "Usage error (invalid flags or arguments)"},
		{InvalidMission, "Invalid mission"},
		{NoFeasiblePlan, "No feasible plan"},
		{BudgetExceeded, "Planning budget exceeded"},
		{Interrupted, "Interrupted"},
		{99, "Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := GetExitCodeDescription(tt.code); got != tt.expected {
				t.Errorf("GetExitCodeDescription(%d) = %q, want %q", tt.code, got, tt.expected)
			}
		})
	}
}
