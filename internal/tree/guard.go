package tree

import (
	"github.com/felixgeelhaar/taskplan/internal/domain"
)

// Ancestors returns every node that must come before id: its preconditions and
// composite parents, transitively. id itself is not included.
func (t *Tree) Ancestors(id domain.NodeID) (map[domain.NodeID]struct{}, error) {
	if _, err := t.lookup(id); err != nil {
		return nil, err
	}
	out := make(map[domain.NodeID]struct{})
	stack := t.upward(id)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[next]; seen {
			continue
		}
		out[next] = struct{}{}
		stack = append(stack, t.upward(next)...)
	}
	return out, nil
}

// upward lists the direct ancestors of id: preconditions first, then parents
func (t *Tree) upward(id domain.NodeID) []domain.NodeID {
	n := t.nodes[id]
	out := make([]domain.NodeID, 0, len(n.Preconditions)+len(t.parents[id]))
	out = append(out, n.Preconditions...)
	return append(out, t.parents[id]...)
}

// ancestorPath walks upward from start looking for target. When found it returns
// the chain from target down to start.
func (t *Tree) ancestorPath(start, target domain.NodeID) ([]domain.NodeID, bool) {
	if start == target {
		return []domain.NodeID{start}, true
	}
	via := map[domain.NodeID]domain.NodeID{start: start}
	queue := []domain.NodeID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, up := range t.upward(cur) {
			if _, seen := via[up]; seen {
				continue
			}
			via[up] = cur
			if up == target {
				path := []domain.NodeID{target}
				for step := cur; ; step = via[step] {
					path = append(path, step)
					if step == start {
						return path, true
					}
				}
			}
			queue = append(queue, up)
		}
	}
	return nil, false
}

// ValidateAcyclic walks everything that descends from root, following children
// and the nodes that name a visited node as a precondition. It returns a
// *CircularDependencyError the moment a node already on the current path is
// reached again. Shared subtrees reached along different paths are fine.
func (t *Tree) ValidateAcyclic(root domain.NodeID) error {
	if _, err := t.lookup(root); err != nil {
		return err
	}

	dependents := make(map[domain.NodeID][]domain.NodeID)
	for _, id := range t.order {
		for _, pre := range t.nodes[id].Preconditions {
			dependents[pre] = append(dependents[pre], id)
		}
	}

	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[domain.NodeID]int, len(t.nodes))
	var path []domain.NodeID

	var visit func(id domain.NodeID) error
	visit = func(id domain.NodeID) error {
		switch state[id] {
		case onPath:
			start := 0
			for i, p := range path {
				if p == id {
					start = i
					break
				}
			}
			cycle := append(append([]domain.NodeID(nil), path[start:]...), id)
			return &CircularDependencyError{Node: id, Path: cycle}
		case done:
			return nil
		}

		state[id] = onPath
		path = append(path, id)
		for _, next := range t.nodes[id].Children {
			if err := visit(next); err != nil {
				return err
			}
		}
		for _, next := range dependents[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	return visit(root)
}
