package tree

import (
	"github.com/felixgeelhaar/taskplan/internal/domain"
)

// Entry is one (node, parent) edge of the read-only view handed to renderers.
type Entry struct {
	ID       domain.NodeID
	Kind     domain.Kind
	IsLeaf   bool
	ParentID domain.NodeID // empty for the root
}

// Enumerate lists the subtree under root in depth-first pre-order. A shared node
// yields one entry per parent edge; its own children are listed once.
func (t *Tree) Enumerate(root domain.NodeID) ([]Entry, error) {
	if _, err := t.lookup(root); err != nil {
		return nil, err
	}

	var out []Entry
	expanded := make(map[domain.NodeID]bool)
	var walk func(id, parent domain.NodeID)
	walk = func(id, parent domain.NodeID) {
		n := t.nodes[id]
		out = append(out, Entry{ID: id, Kind: n.Kind, IsLeaf: n.IsLeaf(), ParentID: parent})
		if expanded[id] {
			return
		}
		expanded[id] = true
		for _, child := range n.Children {
			walk(child, id)
		}
	}
	walk(root, "")
	return out, nil
}
