package health

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// Planner is the part of *planner.Planner the canary needs
type Planner interface {
	Plan(ctx context.Context, t *tree.Tree, root domain.NodeID, pool resource.Pool) (*planner.Result, error)
}

// PlannerChecker plans a fixed two-option mission and checks that the cheaper
// option wins.
type PlannerChecker struct {
	planner Planner
	tree    *tree.Tree
}

// NewPlannerChecker builds the canary mission once
func NewPlannerChecker(p Planner) *PlannerChecker {
	t := tree.New()
	// The canary tree is static and valid
	_ = t.AddNode(tree.Node{ID: "leaf-cheap", Kind: domain.KindLeaf, Cost: 1, Resources: map[string]int{"canary": 1}})
	_ = t.AddNode(tree.Node{ID: "leaf-dear", Kind: domain.KindLeaf, Cost: 2, Resources: map[string]int{"canary": 1}})
	_ = t.AddNode(tree.Node{ID: "canary", Kind: domain.KindOr, Children: []domain.NodeID{"leaf-cheap", "leaf-dear"}})
	return &PlannerChecker{planner: p, tree: t}
}

// NewPlannerCanary builds a canary with its own planner: cfg minus the result
// cache, so every check runs a real search, and without metrics, so probes
// stay out of the run counters.
func NewPlannerCanary(cfg planner.Config) (*PlannerChecker, error) {
	cfg.CacheSize = 0
	p, err := planner.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewPlannerChecker(p), nil
}

// Name implements Checker
func (c *PlannerChecker) Name() string { return "planner-canary" }

// Check implements Checker
func (c *PlannerChecker) Check(ctx context.Context) *Result {
	res, err := c.planner.Plan(ctx, c.tree, "canary", resource.Pool{"canary": 1})
	if err != nil {
		return Unhealthy(fmt.Sprintf("canary plan failed: %v", err))
	}
	if res.Cost != 1 || !res.Contains("leaf-cheap") {
		return Unhealthy(fmt.Sprintf("canary plan chose %v at cost %g", res.Sequence, res.Cost)).
			WithDetail("cost", res.Cost)
	}
	return Healthy("canary plan ok").
		WithDetail("expansions", res.Expansions).
		WithDetail("cached", res.Cached)
}
