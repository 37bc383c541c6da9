package planner

import (
	"context"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// wideTree builds an AND root over depth OR nodes, each offering width leaves
func wideTree(b *testing.B, depth, width int) *tree.Tree {
	b.Helper()
	tr := tree.New()
	var stages []domain.NodeID
	for d := 0; d < depth; d++ {
		var alts []domain.NodeID
		for w := 0; w < width; w++ {
			id := domain.NodeID(fmt.Sprintf("s%d_a%d", d, w))
			if err := tr.AddNode(tree.Node{ID: id, Kind: domain.KindLeaf, Cost: float64((d*7 + w*3) % 11), Resources: map[string]int{"cpu": 1}}); err != nil {
				b.Fatal(err)
			}
			alts = append(alts, id)
		}
		stage := domain.NodeID(fmt.Sprintf("stage%d", d))
		if err := tr.AddNode(tree.Node{ID: stage, Kind: domain.KindOr, Children: alts}); err != nil {
			b.Fatal(err)
		}
		stages = append(stages, stage)
	}
	if err := tr.AddNode(tree.Node{ID: "root", Kind: domain.KindAnd, Children: stages}); err != nil {
		b.Fatal(err)
	}
	return tr
}

func BenchmarkPlan(b *testing.B) {
	for _, parallelism := range []int{1, 4} {
		b.Run(fmt.Sprintf("parallelism=%d", parallelism), func(b *testing.B) {
			tr := wideTree(b, 6, 5)
			p := newPlanner(b, func(c *Config) { c.Parallelism = parallelism })
			pool := resource.Pool{"cpu": 100}

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := p.Plan(context.Background(), tr, "root", pool); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvaluate(b *testing.B) {
	tr := missionTree(b, 0.4)
	option := ids("AcquireData", "ProcessData", "Sensor", "API", "Clean", "Transform")
	pool := resource.Pool{"cpu": 100, "memory": 1 << 20, "gpu": 4}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(tr, option, pool); err != nil {
			b.Fatal(err)
		}
	}
}
