package planner

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/resource"
)

// ErrNoFeasiblePlan is matched by every *PlanningError
var ErrNoFeasiblePlan = stderrors.New("no feasible plan within constraints")

// PlanningError reports that the frontier was exhausted without a plan.
// It carries search statistics and, when one occurred, the last resource
// conflict as a diagnostic.
type PlanningError struct {
	Root           domain.NodeID
	Expansions     int
	Conflicts      int
	RiskRejections int
	LastConflict   *resource.ConflictError
}

func (e *PlanningError) Error() string {
	var b strings.Builder
	b.WriteString(ErrNoFeasiblePlan.Error())
	fmt.Fprintf(&b, " (root %s, %d expansions, %d options over capacity, %d over risk ceiling)",
		e.Root, e.Expansions, e.Conflicts, e.RiskRejections)
	if e.LastConflict != nil {
		fmt.Fprintf(&b, ": last conflict: %s", e.LastConflict)
	}
	return b.String()
}

// Unwrap exposes ErrNoFeasiblePlan and the last conflict to errors.Is/As
func (e *PlanningError) Unwrap() []error {
	out := []error{ErrNoFeasiblePlan}
	if e.LastConflict != nil {
		out = append(out, e.LastConflict)
	}
	return out
}

// ErrorCode implements errors.Coder
func (e *PlanningError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeNoFeasiblePlan
}

// Budget limits
const (
	LimitExpansions = "expansions"
	LimitTimeout    = "timeout"
	LimitCanceled   = "canceled"
)

// BudgetExceededError reports that a run stopped before the frontier emptied.
type BudgetExceededError struct {
	Limit      string
	Expansions int
	Elapsed    time.Duration
	Cause      error
}

func (e *BudgetExceededError) Error() string {
	switch e.Limit {
	case LimitExpansions:
		return fmt.Sprintf("planning budget exceeded: %d expansions", e.Expansions)
	case LimitCanceled:
		return fmt.Sprintf("planning canceled after %d expansions", e.Expansions)
	default:
		return fmt.Sprintf("planning budget exceeded: timeout after %s (%d expansions)", e.Elapsed.Round(time.Millisecond), e.Expansions)
	}
}

func (e *BudgetExceededError) Unwrap() error {
	return e.Cause
}

// ErrorCode implements errors.Coder
func (e *BudgetExceededError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeBudgetExceeded
}

// ConfigError reports an invalid planner setting
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid planner config %s: %s", e.Field, e.Reason)
}

// ErrorCode implements errors.Coder
func (e *ConfigError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeInvalidConfig
}
