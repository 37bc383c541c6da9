package tree

import (
	"fmt"
	"math"
	"sort"

	"github.com/felixgeelhaar/taskplan/internal/domain"
)

// Node is a vertex of the task graph. Edges are id references into the owning Tree.
type Node struct {
	ID   domain.NodeID
	Kind domain.Kind

	// Preconditions are back-references to nodes that must be satisfied first
	Preconditions []domain.NodeID

	// Resources maps resource name to the quantity this node requires
	Resources map[string]int

	Cost float64
	Risk float64

	// Status is owned by an execution tracker; planning only reads it
	Status domain.Status

	// Children are the decomposition options of a composite node, in order
	Children []domain.NodeID
}

// IsLeaf reports whether the node is atomic
func (n *Node) IsLeaf() bool {
	return n.Kind == domain.KindLeaf
}

// Validate checks the node attributes, not its edges
func (n *Node) Validate() error {
	if err := n.ID.Validate(); err != nil {
		return &InvalidNodeError{ID: n.ID, Reason: err.Error()}
	}
	if err := n.Kind.Validate(); err != nil {
		return &InvalidNodeError{ID: n.ID, Reason: err.Error()}
	}
	if math.IsNaN(n.Cost) || math.IsInf(n.Cost, 0) || n.Cost < 0 {
		return &InvalidNodeError{ID: n.ID, Reason: fmt.Sprintf("cost must be a non-negative number, got %v", n.Cost)}
	}
	if math.IsNaN(n.Risk) || n.Risk < 0 || n.Risk > 1 {
		return &InvalidNodeError{ID: n.ID, Reason: fmt.Sprintf("risk must lie in [0, 1], got %v", n.Risk)}
	}
	for _, name := range resourceNames(n.Resources) {
		if name == "" {
			return &InvalidNodeError{ID: n.ID, Reason: "resource name cannot be empty"}
		}
		if n.Resources[name] < 0 {
			return &InvalidNodeError{ID: n.ID, Reason: fmt.Sprintf("resource %q has negative quantity %d", name, n.Resources[name])}
		}
	}
	if n.IsLeaf() && len(n.Children) > 0 {
		return &InvalidEdgeError{Parent: n.ID, Child: n.Children[0], Reason: "leaf nodes cannot have children"}
	}
	return nil
}

// clone returns a deep copy so callers cannot alias the tree's slices and maps
func (n *Node) clone() *Node {
	out := *n
	out.Preconditions = append([]domain.NodeID(nil), n.Preconditions...)
	out.Children = append([]domain.NodeID(nil), n.Children...)
	if n.Resources != nil {
		out.Resources = make(map[string]int, len(n.Resources))
		for k, v := range n.Resources {
			out.Resources[k] = v
		}
	}
	return &out
}

func resourceNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func containsID(ids []domain.NodeID, id domain.NodeID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
