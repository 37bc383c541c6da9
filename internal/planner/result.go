package planner

import (
	"time"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// Result is the plan selected by a run. It is owned by the caller.
type Result struct {
	RunID string        `json:"run_id" yaml:"run_id"`
	Root  domain.NodeID `json:"root" yaml:"root"`

	// Sequence lists the scored nodes in the order the search committed to them
	Sequence []domain.NodeID `json:"sequence" yaml:"sequence"`

	ResourceUsage resource.Usage `json:"resource_usage" yaml:"resource_usage"`
	Cost          float64        `json:"cost" yaml:"cost"`
	RiskFactor    float64        `json:"risk_factor" yaml:"risk_factor"`

	Expansions int           `json:"expansions" yaml:"expansions"`
	Duration   time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Cached     bool          `json:"cached" yaml:"cached"`
}

// Leaves returns the atomic steps of the plan, in sequence order
func (r *Result) Leaves(t *tree.Tree) []domain.NodeID {
	var out []domain.NodeID
	for _, id := range r.Sequence {
		if leaf, err := t.IsLeaf(id); err == nil && leaf {
			out = append(out, id)
		}
	}
	return out
}

// Contains reports whether id was selected
func (r *Result) Contains(id domain.NodeID) bool {
	for _, s := range r.Sequence {
		if s == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (r *Result) Clone() *Result {
	out := *r
	out.Sequence = append([]domain.NodeID(nil), r.Sequence...)
	out.ResourceUsage = r.ResourceUsage.Clone()
	return &out
}
