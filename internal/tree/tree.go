// Package tree holds the task-decomposition graph: an arena of nodes keyed by id,
// with guarded edge insertion and the decomposition rules for each node kind.
package tree

import (
	"github.com/felixgeelhaar/taskplan/internal/domain"
)

// Tree is an arena of task nodes. Children and preconditions are id references,
// so a node may be shared by several composite parents.
//
// A Tree is not safe for concurrent mutation; concurrent readers are fine once
// construction has finished.
type Tree struct {
	nodes   map[domain.NodeID]*Node
	order   []domain.NodeID
	parents map[domain.NodeID][]domain.NodeID
}

// New creates an empty tree
func New() *Tree {
	return &Tree{
		nodes:   make(map[domain.NodeID]*Node),
		parents: make(map[domain.NodeID][]domain.NodeID),
	}
}

// Len returns the number of nodes
func (t *Tree) Len() int {
	return len(t.nodes)
}

// IDs returns node ids in insertion order
func (t *Tree) IDs() []domain.NodeID {
	return append([]domain.NodeID(nil), t.order...)
}

// Node returns the node with the given id. The returned node is the tree's own
// entry, not a copy: it reflects later updates and must be treated as read-only.
func (t *Tree) Node(id domain.NodeID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Parents returns the composite nodes that list id as a child, in insertion order
func (t *Tree) Parents(id domain.NodeID) []domain.NodeID {
	return append([]domain.NodeID(nil), t.parents[id]...)
}

// IsLeaf reports whether id names a leaf node
func (t *Tree) IsLeaf(id domain.NodeID) (bool, error) {
	n, err := t.lookup(id)
	if err != nil {
		return false, err
	}
	return n.IsLeaf(), nil
}

// AddNode inserts a node. Children and preconditions listed on the node must
// already exist; they are attached through the same guards as AddChild and
// AddPrecondition.
func (t *Tree) AddNode(n Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if _, exists := t.nodes[n.ID]; exists {
		return &DuplicateNodeError{ID: n.ID}
	}
	for _, ref := range append(append([]domain.NodeID(nil), n.Children...), n.Preconditions...) {
		if ref == n.ID {
			return &CircularDependencyError{Node: n.ID, Path: []domain.NodeID{n.ID, n.ID}}
		}
		if _, ok := t.nodes[ref]; !ok {
			return &UnknownNodeError{ID: ref}
		}
	}

	stored := n.clone()
	stored.Children = nil
	stored.Preconditions = nil
	t.nodes[n.ID] = stored
	t.order = append(t.order, n.ID)

	// A fresh node has no ancestors, so the guarded inserts below only reject
	// duplicates; surface them rather than silently dropping the edge.
	for _, pre := range n.Preconditions {
		if err := t.AddPrecondition(n.ID, pre); err != nil {
			t.remove(n.ID)
			return err
		}
	}
	for _, child := range n.Children {
		if err := t.AddChild(n.ID, child); err != nil {
			t.remove(n.ID)
			return err
		}
	}
	return nil
}

// AddChild appends child to parent's decomposition options.
//
// It fails with *CircularDependencyError when child is parent or already an
// ancestor of parent, walking preconditions and composite parents upward from
// parent. On any error the tree is left unchanged.
func (t *Tree) AddChild(parent, child domain.NodeID) error {
	p, err := t.lookup(parent)
	if err != nil {
		return err
	}
	if _, err := t.lookup(child); err != nil {
		return err
	}
	if p.IsLeaf() {
		return &InvalidEdgeError{Parent: parent, Child: child, Reason: "leaf nodes cannot have children"}
	}
	if containsID(p.Children, child) {
		return &InvalidEdgeError{Parent: parent, Child: child, Reason: "already a child"}
	}
	if path, found := t.ancestorPath(parent, child); found {
		return &CircularDependencyError{Node: child, Path: append(path, child)}
	}

	p.Children = append(p.Children, child)
	t.parents[child] = append(t.parents[child], parent)
	return nil
}

// AddPrecondition records that pre must be satisfied before id.
// Preconditions take part in ancestry, so the same cycle guard applies.
func (t *Tree) AddPrecondition(id, pre domain.NodeID) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	if _, err := t.lookup(pre); err != nil {
		return err
	}
	if containsID(n.Preconditions, pre) {
		return nil
	}
	// pre becomes an ancestor of id; that closes a cycle if id is already an ancestor of pre
	if path, found := t.ancestorPath(pre, id); found {
		return &CircularDependencyError{Node: id, Path: append(path, id)}
	}

	n.Preconditions = append(n.Preconditions, pre)
	return nil
}

// SetStatus updates the execution status of a node. It exists for an execution
// tracker; the planner never calls it.
func (t *Tree) SetStatus(id domain.NodeID, status domain.Status) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	n.Status = status
	return nil
}

// FromNodes restores a tree from already-wired nodes, as produced by a decoder.
// References are checked but acyclicity is not; run ValidateAcyclic before use.
func FromNodes(nodes []Node) (*Tree, error) {
	t := New()
	for i := range nodes {
		if err := nodes[i].Validate(); err != nil {
			return nil, err
		}
		if _, exists := t.nodes[nodes[i].ID]; exists {
			return nil, &DuplicateNodeError{ID: nodes[i].ID}
		}
		t.nodes[nodes[i].ID] = nodes[i].clone()
		t.order = append(t.order, nodes[i].ID)
	}

	for _, id := range t.order {
		n := t.nodes[id]
		for _, pre := range n.Preconditions {
			if _, ok := t.nodes[pre]; !ok {
				return nil, &UnknownNodeError{ID: pre}
			}
		}
		seen := make(map[domain.NodeID]bool, len(n.Children))
		for _, child := range n.Children {
			if _, ok := t.nodes[child]; !ok {
				return nil, &UnknownNodeError{ID: child}
			}
			if seen[child] {
				return nil, &InvalidEdgeError{Parent: id, Child: child, Reason: "already a child"}
			}
			seen[child] = true
			t.parents[child] = append(t.parents[child], id)
		}
	}
	return t, nil
}

func (t *Tree) lookup(id domain.NodeID) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{ID: id}
	}
	return n, nil
}

// remove deletes a node that nothing references yet
func (t *Tree) remove(id domain.NodeID) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, child := range n.Children {
		t.parents[child] = removeID(t.parents[child], id)
		if len(t.parents[child]) == 0 {
			delete(t.parents, child)
		}
	}
	delete(t.nodes, id)
	t.order = removeID(t.order, id)
}

func removeID(ids []domain.NodeID, id domain.NodeID) []domain.NodeID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
