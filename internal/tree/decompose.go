package tree

import (
	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
)

// Feasible reports whether the node's own requirements fit into pool.
// The error is a *resource.ConflictError when they do not.
func (t *Tree) Feasible(id domain.NodeID, pool resource.Pool) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	return resource.Check(n.Resources, pool)
}

// Decompose returns the decomposition options of id against pool.
//
//   - AND: one option holding every child in order, or none if any child is
//     infeasible or there are no children.
//   - OR: one singleton option per feasible child; infeasible children are dropped.
//   - Leaf: none.
func (t *Tree) Decompose(id domain.NodeID, pool resource.Pool) ([][]domain.NodeID, error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}

	switch n.Kind {
	case domain.KindAnd:
		if len(n.Children) == 0 {
			return nil, nil
		}
		for _, child := range n.Children {
			if resource.Check(t.nodes[child].Resources, pool) != nil {
				return nil, nil
			}
		}
		return [][]domain.NodeID{append([]domain.NodeID(nil), n.Children...)}, nil
	case domain.KindOr:
		var options [][]domain.NodeID
		for _, child := range n.Children {
			if resource.Check(t.nodes[child].Resources, pool) == nil {
				options = append(options, []domain.NodeID{child})
			}
		}
		return options, nil
	default:
		return nil, nil
	}
}
