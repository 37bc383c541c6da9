package planner

import (
	"sort"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// Evaluation is the score of one decomposition option
type Evaluation struct {
	Usage resource.Usage
	Cost  float64
	Risk  float64

	// Scored lists the pending nodes that contributed, in option order
	Scored []domain.NodeID
}

// Evaluate sums resources and cost and takes the maximum risk over the pending
// nodes of option. It fails with *resource.ConflictError as soon as a running
// total exceeds pool. Evaluate reads the tree only.
func Evaluate(t *tree.Tree, option []domain.NodeID, pool resource.Pool) (Evaluation, error) {
	ev := Evaluation{Usage: resource.Usage{}}
	for _, id := range option {
		n, ok := t.Node(id)
		if !ok {
			return Evaluation{}, &tree.UnknownNodeError{ID: id}
		}
		if !n.Status.IsPending() {
			continue
		}

		names := make([]string, 0, len(n.Resources))
		for name := range n.Resources {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ev.Usage.Add(name, n.Resources[name])
			if ev.Usage[name] > pool.Capacity(name) {
				return Evaluation{}, &resource.ConflictError{
					Resource:  name,
					Required:  ev.Usage[name],
					Available: pool.Capacity(name),
				}
			}
		}

		ev.Cost += n.Cost
		if n.Risk > ev.Risk {
			ev.Risk = n.Risk
		}
		ev.Scored = append(ev.Scored, id)
	}
	return ev, nil
}
