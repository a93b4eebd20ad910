package dist

import (
	"sync"
	"testing"

	"github.com/dd0wney/cluso-partition/pkg/graph"
)

func TestUniformDistribution(t *testing.T) {
	d := NewUniformDistribution(10, 3)

	wantStarts := []graph.NodeID{0, 4, 7, 10}
	for pe := PEID(0); pe < 3; pe++ {
		if d.Start(pe) != wantStarts[pe] || d.End(pe) != wantStarts[pe+1] {
			t.Errorf("PE %d owns [%d, %d), want [%d, %d)",
				pe, d.Start(pe), d.End(pe), wantStarts[pe], wantStarts[pe+1])
		}
	}
	if d.N() != 10 || d.NumPEs() != 3 {
		t.Fatalf("N = %d, NumPEs = %d, want 10 and 3", d.N(), d.NumPEs())
	}

	for global := graph.NodeID(0); global < 10; global++ {
		owner := d.Owner(global)
		if global < d.Start(owner) || global >= d.End(owner) {
			t.Errorf("Owner(%d) = %d but range is [%d, %d)",
				global, owner, d.Start(owner), d.End(owner))
		}
		if d.ToGlobal(owner, d.ToLocal(global)) != global {
			t.Errorf("ToGlobal(ToLocal(%d)) roundtrip failed", global)
		}
	}
}

func TestGhostTableMapForeignNode(t *testing.T) {
	// Three PEs with 4/3/3 nodes; PE 1 holds ghosts of global nodes 3 and 7.
	d := NewUniformDistribution(10, 3)
	gt := NewGhostTable(d, 1)

	if gt.N() != 3 {
		t.Fatalf("N = %d, want 3", gt.N())
	}
	g3 := gt.AddGhost(3)
	g7 := gt.AddGhost(7)
	if g3 != 3 || g7 != 4 {
		t.Fatalf("ghost ids = %d, %d, want 3, 4", g3, g7)
	}
	if gt.AddGhost(3) != g3 {
		t.Error("re-registering a ghost must return the same id")
	}
	if gt.NumGhosts() != 2 {
		t.Errorf("NumGhosts = %d, want 2", gt.NumGhosts())
	}

	if !gt.IsGhost(g3) || gt.IsGhost(2) {
		t.Error("IsGhost misclassifies nodes")
	}
	if gt.GlobalID(g7) != 7 || gt.GlobalID(1) != 5 {
		t.Errorf("GlobalID = %d, %d, want 7, 5", gt.GlobalID(g7), gt.GlobalID(1))
	}
	if gt.GhostOwner(g3) != 0 || gt.GhostOwner(g7) != 2 {
		t.Errorf("GhostOwner = %d, %d, want 0, 2", gt.GhostOwner(g3), gt.GhostOwner(g7))
	}

	// PE 0's local node 3 is global 3, a ghost here; PE 2's local node 0 is
	// global 7. An owned node announced by its own PE maps to itself.
	if got := gt.MapForeignNode(3, 0); got != g3 {
		t.Errorf("MapForeignNode(3, 0) = %d, want %d", got, g3)
	}
	if got := gt.MapForeignNode(0, 2); got != g7 {
		t.Errorf("MapForeignNode(0, 2) = %d, want %d", got, g7)
	}
	if got := gt.MapForeignNode(2, 1); got != 2 {
		t.Errorf("MapForeignNode(2, 1) = %d, want 2", got)
	}
}

func TestSparseAllToAll(t *testing.T) {
	const numPEs = 3
	group := NewLocalGroup[int](numPEs)

	// Every PE sends me*10+to to every other PE, nothing to itself.
	results := make([]map[PEID][]int, numPEs)
	var wg sync.WaitGroup
	for me := PEID(0); me < numPEs; me++ {
		wg.Add(1)
		go func(me PEID) {
			defer wg.Done()
			got := make(map[PEID][]int)
			SparseAllToAll(group, numPEs, me,
				func(emit func(to PEID, msg int)) {
					for to := PEID(0); to < numPEs; to++ {
						if to != me {
							emit(to, int(me)*10+int(to))
						}
					}
				},
				func(from PEID, msgs []int) {
					got[from] = msgs
				})
			results[me] = got
		}(me)
	}
	wg.Wait()

	for me := PEID(0); me < numPEs; me++ {
		if len(results[me]) != numPEs-1 {
			t.Fatalf("PE %d heard from %d PEs, want %d", me, len(results[me]), numPEs-1)
		}
		for from, msgs := range results[me] {
			want := int(from)*10 + int(me)
			if len(msgs) != 1 || msgs[0] != want {
				t.Errorf("PE %d got %v from %d, want [%d]", me, msgs, from, want)
			}
		}
	}
}

func TestSparseAllToAllMultipleRounds(t *testing.T) {
	const numPEs = 2
	group := NewLocalGroup[int](numPEs)

	var wg sync.WaitGroup
	sums := make([]int, numPEs)
	for me := PEID(0); me < numPEs; me++ {
		wg.Add(1)
		go func(me PEID) {
			defer wg.Done()
			for round := 0; round < 5; round++ {
				SparseAllToAll(group, numPEs, me,
					func(emit func(to PEID, msg int)) {
						emit(1-me, round)
					},
					func(from PEID, msgs []int) {
						sums[me] += msgs[0]
					})
			}
		}(me)
	}
	wg.Wait()

	if sums[0] != 10 || sums[1] != 10 {
		t.Errorf("round sums = %v, want [10 10]", sums)
	}
}

func TestSyncGhostBlocks(t *testing.T) {
	// Two PEs, 2 nodes each; a path 0-1-2-3 cut between global nodes 1 and 2.
	// Each PE mirrors the neighbor across the cut and announces its own
	// interface node.
	d := NewUniformDistribution(4, 2)
	group := NewLocalGroup[BlockUpdate](2)

	tables := [2]*GhostTable{NewGhostTable(d, 0), NewGhostTable(d, 1)}
	tables[0].AddGhost(2)
	tables[1].AddGhost(1)

	// blocks[pe] holds owned nodes then ghosts; ghost entries start stale.
	blocks := [2][]graph.BlockID{{0, 0, 99}, {1, 1, 99}}

	var wg sync.WaitGroup
	for me := PEID(0); me < 2; me++ {
		wg.Add(1)
		go func(me PEID) {
			defer wg.Done()
			interfaceNode := graph.NodeID(1 - me)
			SyncGhostBlocks(group, tables[me],
				func(emit func(u graph.NodeID, pe PEID)) {
					emit(interfaceNode, 1-me)
				},
				func(u graph.NodeID) graph.BlockID {
					return blocks[me][u]
				},
				func(lnode graph.NodeID, b graph.BlockID) {
					blocks[me][lnode] = b
				})
		}(me)
	}
	wg.Wait()

	if blocks[0][2] != 1 {
		t.Errorf("PE 0 ghost block = %d, want 1", blocks[0][2])
	}
	if blocks[1][2] != 0 {
		t.Errorf("PE 1 ghost block = %d, want 0", blocks[1][2])
	}
}
