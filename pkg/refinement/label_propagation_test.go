package refinement

import (
	"testing"

	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

func TestLPRefinerImprovesStar(t *testing.T) {
	// Star center stranded in its own block.
	g := buildCSR(t, [][]graph.NodeID{{1, 2, 3}, {0}, {0}, {0}}, nil)
	ctx := partition.NewContext(g.TotalNodeWeight(), 2, 2.0)
	p := partition.NewPartitionedGraph(g, 2, []graph.BlockID{1, 0, 0, 0})

	r := NewLPRefiner(ctx, LPConfig{Workers: 1, Seed: 3})
	r.Initialize(p)

	if !r.Refine() {
		t.Error("Refine() = false, want improvement")
	}
	if got := partition.EdgeCut(p); got != 0 {
		t.Errorf("cut after refinement = %d, want 0", got)
	}
}

func TestLPRefinerRepairMove(t *testing.T) {
	// Block 0 starts over its cap; the zero-gain move of node 2 is the only
	// admissible repair and must be preferred over staying.
	g := pathCSR(t, 4)
	ctx := partition.NewContext(g.TotalNodeWeight(), 2, 0.0)
	p := partition.NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 0, 1})

	r := NewLPRefiner(ctx, LPConfig{Workers: 1, Seed: 3})
	r.Initialize(p)

	if r.Refine() {
		t.Error("Refine() = true, but the cut cannot drop below 1")
	}
	want := []graph.BlockID{0, 0, 1, 1}
	for u, b := range want {
		if got := p.Block(graph.NodeID(u)); got != b {
			t.Errorf("block[%d] = %d, want %d", u, got, b)
		}
	}
	if !partition.Feasible(p, ctx) {
		t.Error("partition still infeasible after repair move")
	}
	if got := partition.EdgeCut(p); got != 1 {
		t.Errorf("cut = %d, want 1", got)
	}
}

func TestLPRefinerKeepsOptimalPartition(t *testing.T) {
	g := pathCSR(t, 4)
	ctx := partition.NewContext(g.TotalNodeWeight(), 2, 0.0)
	p := partition.NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 1, 1})

	r := NewLPRefiner(ctx, LPConfig{Workers: 1, Seed: 3})
	r.Initialize(p)

	if r.Refine() {
		t.Error("Refine() = true on an optimal partition")
	}
	want := []graph.BlockID{0, 0, 1, 1}
	for u, b := range want {
		if got := p.Block(graph.NodeID(u)); got != b {
			t.Errorf("block[%d] = %d, want %d", u, got, b)
		}
	}
}
