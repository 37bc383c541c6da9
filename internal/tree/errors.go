package tree

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// CircularDependencyError reports that a node would become, or already is, its own ancestor.
type CircularDependencyError struct {
	// Node is the repeated node
	Node domain.NodeID
	// Path lists the cycle in edge order, starting and ending with Node
	Path []domain.NodeID
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular dependency detected at %s", e.Node)
	}
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = id.String()
	}
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(parts, " -> "))
}

// ErrorCode implements errors.Coder
func (e *CircularDependencyError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeCircularDependency
}

// UnknownNodeError reports a reference to an id that is not in the tree.
type UnknownNodeError struct {
	ID domain.NodeID
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %q", e.ID)
}

// ErrorCode implements errors.Coder
func (e *UnknownNodeError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeUnknownNode
}

// DuplicateNodeError reports a second node with an id already in the tree.
type DuplicateNodeError struct {
	ID domain.NodeID
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node %q", e.ID)
}

// ErrorCode implements errors.Coder
func (e *DuplicateNodeError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeDuplicateNode
}

// InvalidEdgeError reports an edge the node model does not allow.
type InvalidEdgeError struct {
	Parent domain.NodeID
	Child  domain.NodeID
	Reason string
}

func (e *InvalidEdgeError) Error() string {
	return fmt.Sprintf("invalid edge %s -> %s: %s", e.Parent, e.Child, e.Reason)
}

// ErrorCode implements errors.Coder
func (e *InvalidEdgeError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeInvalidEdge
}

// InvalidNodeError reports a node whose attributes are out of range.
type InvalidNodeError struct {
	ID     domain.NodeID
	Reason string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("invalid node %q: %s", e.ID, e.Reason)
}

// ErrorCode implements errors.Coder
func (e *InvalidNodeError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeInvalidNode
}
