package partition

import (
	"sync"
	"testing"

	"github.com/dd0wney/cluso-partition/pkg/graph"
)

// path4 builds the unit-weight path 0-1-2-3.
func path4(t *testing.T) *graph.CSRGraph {
	t.Helper()
	nodes := []graph.EdgeID{0, 1, 3, 5, 6}
	edges := []graph.NodeID{1, 0, 2, 1, 3, 2}
	weights := []graph.EdgeWeight{1, 1, 1, 1, 1, 1}
	return graph.NewCSRGraph(nodes, edges, nil, weights, true)
}

func TestContextBlockWeightCaps(t *testing.T) {
	ctx := NewContext(10, 3, 0.5)

	// ceil(10/3) = 4, cap = 4 * 1.5 = 6
	if ctx.PerfectBlockWeight() != 4 {
		t.Errorf("PerfectBlockWeight() = %d, want 4", ctx.PerfectBlockWeight())
	}
	for b := graph.BlockID(0); b < 3; b++ {
		if ctx.MaxBlockWeight(b) != 6 {
			t.Errorf("MaxBlockWeight(%d) = %d, want 6", b, ctx.MaxBlockWeight(b))
		}
	}

	// epsilon 0 keeps the cap at the perfect weight
	tight := NewContext(10, 3, 0)
	if tight.MaxBlockWeight(0) != 4 {
		t.Errorf("MaxBlockWeight(0) = %d, want 4", tight.MaxBlockWeight(0))
	}
}

func TestPartitionedGraphBlockWeights(t *testing.T) {
	g := path4(t)
	p := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 1, 1})

	if p.BlockWeight(0) != 2 || p.BlockWeight(1) != 2 {
		t.Fatalf("block weights = [%d %d], want [2 2]", p.BlockWeight(0), p.BlockWeight(1))
	}

	p.SetBlock(1, 1)
	if p.BlockWeight(0) != 1 || p.BlockWeight(1) != 3 {
		t.Errorf("after move, block weights = [%d %d], want [1 3]", p.BlockWeight(0), p.BlockWeight(1))
	}
	if p.Block(1) != 1 {
		t.Errorf("Block(1) = %d, want 1", p.Block(1))
	}

	// Re-assigning the same block must not change weights
	p.SetBlock(1, 1)
	if p.BlockWeight(1) != 3 {
		t.Errorf("idempotent SetBlock changed weight to %d", p.BlockWeight(1))
	}
}

func TestTryMoveWeightRespectsLimit(t *testing.T) {
	g := path4(t)
	p := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 1, 1})

	if !p.TryMoveWeight(0, 1, 1, 3) {
		t.Error("move within the limit rejected")
	}
	if p.BlockWeight(0) != 1 || p.BlockWeight(1) != 3 {
		t.Errorf("block weights = [%d %d], want [1 3]", p.BlockWeight(0), p.BlockWeight(1))
	}
	if p.TryMoveWeight(0, 1, 1, 3) {
		t.Error("move past the limit accepted")
	}
}

func TestTryMoveWeightConcurrent(t *testing.T) {
	g := path4(t)
	p := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 0, 0})

	// 16 goroutines race to move unit weights under a limit of 3; at most
	// 3 may win.
	var wg sync.WaitGroup
	wins := make([]bool, 16)
	for i := range wins {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i] = p.TryMoveWeight(0, 1, 1, 3)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, w := range wins {
		if w {
			won++
		}
	}
	if won != 3 {
		t.Errorf("%d moves won, want 3", won)
	}
	if p.BlockWeight(1) != 3 {
		t.Errorf("BlockWeight(1) = %d, want 3", p.BlockWeight(1))
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := path4(t)
	p := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 1, 1})

	snap := p.CopyPartition()
	p.SetBlock(0, 1)
	p.SetBlock(1, 1)
	p.RestorePartition(snap)

	for u := graph.NodeID(0); u < 4; u++ {
		want := graph.BlockID(0)
		if u >= 2 {
			want = 1
		}
		if p.Block(u) != want {
			t.Errorf("Block(%d) = %d, want %d", u, p.Block(u), want)
		}
	}
	if p.BlockWeight(0) != 2 || p.BlockWeight(1) != 2 {
		t.Errorf("restored block weights = [%d %d], want [2 2]", p.BlockWeight(0), p.BlockWeight(1))
	}
}

func TestIsBorderNode(t *testing.T) {
	g := path4(t)
	p := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 1, 1})

	wantBorder := []bool{false, true, true, false}
	for u, want := range wantBorder {
		if got := p.IsBorderNode(graph.NodeID(u)); got != want {
			t.Errorf("IsBorderNode(%d) = %v, want %v", u, got, want)
		}
	}
}

func TestQualityMetrics(t *testing.T) {
	g := path4(t)
	p := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 1, 1})
	ctx := NewContext(g.TotalNodeWeight(), 2, 0)

	if cut := EdgeCut(p); cut != 1 {
		t.Errorf("EdgeCut() = %d, want 1", cut)
	}
	if imb := Imbalance(p, ctx); imb != 0 {
		t.Errorf("Imbalance() = %v, want 0", imb)
	}
	if !Feasible(p, ctx) {
		t.Error("balanced partition reported infeasible")
	}
	if !Validate(p) {
		t.Error("valid partition rejected")
	}

	// 3/1 split overloads block 0
	skewed := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 0, 1})
	if Feasible(skewed, ctx) {
		t.Error("overloaded partition reported feasible")
	}
	if TotalOverload(skewed, ctx) != 1 {
		t.Errorf("TotalOverload() = %d, want 1", TotalOverload(skewed, ctx))
	}
}

func TestSummarizeBlockWeights(t *testing.T) {
	g := path4(t)
	p := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 0, 1})

	stats := SummarizeBlockWeights(p)
	if stats.Mean != 2 {
		t.Errorf("Mean = %v, want 2", stats.Mean)
	}
	if stats.Min != 1 || stats.Max != 3 {
		t.Errorf("Min/Max = %v/%v, want 1/3", stats.Min, stats.Max)
	}

	single := NewPartitionedGraph(g, 1, []graph.BlockID{0, 0, 0, 0})
	sstats := SummarizeBlockWeights(single)
	if sstats.StdDev != 0 {
		t.Errorf("single-block StdDev = %v, want 0", sstats.StdDev)
	}
}

func TestDeltaPartition(t *testing.T) {
	g := path4(t)
	p := NewPartitionedGraph(g, 2, []graph.BlockID{0, 0, 1, 1})
	d := NewDeltaPartition(p)

	if d.Block(0) != 0 || d.BlockWeight(0) != 2 {
		t.Fatal("empty delta must mirror the base")
	}

	d.SetBlock(0, 1)
	if d.Block(0) != 1 {
		t.Errorf("delta Block(0) = %d, want 1", d.Block(0))
	}
	if p.Block(0) != 0 {
		t.Error("staged move leaked into the base")
	}
	if d.BlockWeight(0) != 1 || d.BlockWeight(1) != 3 {
		t.Errorf("delta block weights = [%d %d], want [1 3]", d.BlockWeight(0), d.BlockWeight(1))
	}

	moves := 0
	d.Moves(func(u graph.NodeID, b graph.BlockID) {
		moves++
		if u != 0 || b != 1 {
			t.Errorf("unexpected move %d -> %d", u, b)
		}
	})
	if moves != 1 {
		t.Errorf("Moves() visited %d moves, want 1", moves)
	}

	d.Clear()
	if d.Block(0) != 0 || d.BlockWeight(1) != 2 {
		t.Error("Clear() did not discard staged moves")
	}

	d.SetBlock(3, 0)
	d.Apply()
	if p.Block(3) != 0 || p.BlockWeight(0) != 3 {
		t.Error("Apply() did not commit staged moves to the base")
	}
}
