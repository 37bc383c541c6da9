// Package resource models the capacity snapshot a planning run is checked against
// and the usage accumulated by candidate decompositions.
package resource

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/taskplan/internal/errors"
)

// Pool maps resource names to available integer capacity.
// A resource absent from the pool has capacity zero.
type Pool map[string]int

// Usage maps resource names to the quantity consumed.
type Usage map[string]int

// ConflictError reports that a requirement exceeds the capacity of one resource.
type ConflictError struct {
	Resource  string
	Required  int
	Available int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("insufficient %s: %d/%d", e.Resource, e.Required, e.Available)
}

// ErrorCode implements errors.Coder
func (e *ConflictError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeResourceConflict
}

// InvalidPoolError reports a malformed capacity entry.
type InvalidPoolError struct {
	Resource string
	Capacity int
}

func (e *InvalidPoolError) Error() string {
	return fmt.Sprintf("resource %q has negative capacity %d", e.Resource, e.Capacity)
}

// ErrorCode implements errors.Coder
func (e *InvalidPoolError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeInvalidPool
}

// Capacity returns the capacity of name, zero when absent.
func (p Pool) Capacity(name string) int {
	return p[name]
}

// Names returns the resource names in lexicographic order.
func (p Pool) Names() []string {
	return sortedKeys(p)
}

// Clone returns an independent copy.
func (p Pool) Clone() Pool {
	out := make(Pool, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Validate rejects negative capacities.
func (p Pool) Validate() error {
	for _, name := range p.Names() {
		if p[name] < 0 {
			return &InvalidPoolError{Resource: name, Capacity: p[name]}
		}
	}
	return nil
}

// Remaining returns the capacity left after used has been reserved.
// Over-reserved resources are reported as zero.
func (p Pool) Remaining(used Usage) Pool {
	out := p.Clone()
	for name, qty := range used {
		left := out[name] - qty
		if left < 0 {
			left = 0
		}
		out[name] = left
	}
	return out
}

// Add accumulates qty units of name.
func (u Usage) Add(name string, qty int) {
	u[name] += qty
}

// Merge adds every entry of other into u.
func (u Usage) Merge(other Usage) {
	for name, qty := range other {
		u[name] += qty
	}
}

// Clone returns an independent copy.
func (u Usage) Clone() Usage {
	out := make(Usage, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Names returns the resource names in lexicographic order.
func (u Usage) Names() []string {
	return sortedKeys(u)
}

// Check verifies that every quantity in required fits into pool on its own.
// Resources are examined in lexicographic order so the reported conflict is stable.
func Check(required map[string]int, pool Pool) error {
	for _, name := range sortedKeys(required) {
		if required[name] > pool.Capacity(name) {
			return &ConflictError{Resource: name, Required: required[name], Available: pool.Capacity(name)}
		}
	}
	return nil
}

func sortedKeys[M ~map[string]int](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
