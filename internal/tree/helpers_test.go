package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
)

// missionTree builds the reference mission: an AND root over an OR data
// acquisition step and an AND processing step.
func missionTree(t *testing.T) *Tree {
	t.Helper()
	tr := New()
	add := func(n Node) {
		t.Helper()
		require.NoError(t, tr.AddNode(n))
	}
	add(Node{ID: "Sensor", Kind: domain.KindLeaf, Resources: map[string]int{"cpu": 1, "memory": 2048}, Cost: 50, Risk: 0.2})
	add(Node{ID: "API", Kind: domain.KindLeaf, Resources: map[string]int{"cpu": 2, "memory": 1024}, Cost: 30, Risk: 0.4})
	add(Node{ID: "Clean", Kind: domain.KindLeaf, Resources: map[string]int{"memory": 512}, Cost: 10})
	add(Node{ID: "Transform", Kind: domain.KindLeaf, Resources: map[string]int{"cpu": 2}, Cost: 20})
	add(Node{ID: "AcquireData", Kind: domain.KindOr, Resources: map[string]int{"memory": 4096}, Children: []domain.NodeID{"Sensor", "API"}})
	add(Node{ID: "ProcessData", Kind: domain.KindAnd, Resources: map[string]int{"cpu": 4, "gpu": 1}, Children: []domain.NodeID{"Clean", "Transform"}})
	add(Node{ID: "Mission", Kind: domain.KindAnd, Resources: map[string]int{"cpu": 2}, Children: []domain.NodeID{"AcquireData", "ProcessData"}})
	return tr
}

func missionPool() resource.Pool {
	return resource.Pool{"cpu": 8, "memory": 16384, "gpu": 1}
}

func ids(values ...string) []domain.NodeID {
	out := make([]domain.NodeID, len(values))
	for i, v := range values {
		out[i] = domain.NodeID(v)
	}
	return out
}
