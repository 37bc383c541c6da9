package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

type leafSpec struct {
	id        string
	resources map[string]int
	cost      float64
	risk      float64
}

// missionTree builds the reference mission. apiRisk lets a test push the
// cheapest alternative over the risk ceiling.
func missionTree(t testing.TB, apiRisk float64) *tree.Tree {
	t.Helper()
	tr := tree.New()
	for _, l := range []leafSpec{
		{"Sensor", map[string]int{"cpu": 1, "memory": 2048}, 50, 0.2},
		{"API", map[string]int{"cpu": 2, "memory": 1024}, 30, apiRisk},
		{"Clean", map[string]int{"memory": 512}, 10, 0},
		{"Transform", map[string]int{"cpu": 2}, 20, 0},
	} {
		require.NoError(t, tr.AddNode(tree.Node{ID: domain.NodeID(l.id), Kind: domain.KindLeaf, Resources: l.resources, Cost: l.cost, Risk: l.risk}))
	}
	require.NoError(t, tr.AddNode(tree.Node{ID: "AcquireData", Kind: domain.KindOr, Resources: map[string]int{"memory": 4096}, Children: ids("Sensor", "API")}))
	require.NoError(t, tr.AddNode(tree.Node{ID: "ProcessData", Kind: domain.KindAnd, Resources: map[string]int{"cpu": 4, "gpu": 1}, Children: ids("Clean", "Transform")}))
	require.NoError(t, tr.AddNode(tree.Node{ID: "Mission", Kind: domain.KindAnd, Resources: map[string]int{"cpu": 2}, Children: ids("AcquireData", "ProcessData")}))
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

func newPlanner(t testing.TB, mutate func(*Config), opts ...Option) *Planner {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CacheSize = 0
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg, opts...)
	require.NoError(t, err)
	return p
}
