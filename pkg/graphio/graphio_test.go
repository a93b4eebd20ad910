package graphio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-partition/pkg/graph"
)

func buildCSR(t *testing.T, adjacency [][]graph.NodeID, nodeWeights []graph.NodeWeight, edgeWeights []graph.EdgeWeight) *graph.CSRGraph {
	t.Helper()

	nodes := make([]graph.EdgeID, len(adjacency)+1)
	var edges []graph.NodeID
	for u, neighbors := range adjacency {
		nodes[u+1] = nodes[u] + graph.EdgeID(len(neighbors))
		edges = append(edges, neighbors...)
	}
	return graph.NewCSRGraph(nodes, edges, nodeWeights, edgeWeights, false)
}

func sameGraph(t *testing.T, got, want graph.Graph) {
	t.Helper()

	if got.N() != want.N() || got.M() != want.M() {
		t.Fatalf("graph has %d nodes, %d half-edges, want %d, %d", got.N(), got.M(), want.N(), want.M())
	}
	for u := graph.NodeID(0); u < want.N(); u++ {
		if got.NodeWeight(u) != want.NodeWeight(u) {
			t.Fatalf("node %d weight = %d, want %d", u, got.NodeWeight(u), want.NodeWeight(u))
		}
		var gotAdj, wantAdj []graph.NodeID
		var gotW, wantW []graph.EdgeWeight
		got.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			gotAdj = append(gotAdj, v)
			gotW = append(gotW, got.EdgeWeight(e))
			return true
		})
		want.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			wantAdj = append(wantAdj, v)
			wantW = append(wantW, want.EdgeWeight(e))
			return true
		})
		if len(gotAdj) != len(wantAdj) {
			t.Fatalf("node %d has %d neighbors, want %d", u, len(gotAdj), len(wantAdj))
		}
		for i := range wantAdj {
			if gotAdj[i] != wantAdj[i] || gotW[i] != wantW[i] {
				t.Fatalf("node %d neighbor %d = (%d, %d), want (%d, %d)",
					u, i, gotAdj[i], gotW[i], wantAdj[i], wantW[i])
			}
		}
	}
}

func TestReadMETISUnweighted(t *testing.T) {
	input := `% a path of four nodes
4 3
2
1 3
2 4
3
`
	g, err := ReadMETIS(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadMETIS: %v", err)
	}
	want := buildCSR(t, [][]graph.NodeID{{1}, {0, 2}, {1, 3}, {2}}, nil, nil)
	sameGraph(t, g, want)
}

func TestReadMETISWeighted(t *testing.T) {
	input := `3 3 011
5 2 7 3 9
3 1 7 3 4
2 1 9 2 4
`
	g, err := ReadMETIS(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadMETIS: %v", err)
	}
	want := buildCSR(t,
		[][]graph.NodeID{{1, 2}, {0, 2}, {0, 1}},
		[]graph.NodeWeight{5, 3, 2},
		[]graph.EdgeWeight{7, 9, 7, 4, 9, 4})
	sameGraph(t, g, want)
}

func TestReadMETISRejectsAsymmetry(t *testing.T) {
	input := "3 2\n2 2\n1\n1\n"
	if _, err := ReadMETIS(strings.NewReader(input)); !errors.Is(err, graph.ErrAsymmetricGraph) {
		t.Fatalf("err = %v, want ErrAsymmetricGraph", err)
	}
}

func TestReadMETISRejectsNegativeWeight(t *testing.T) {
	input := "2 1 001\n2 -1\n1 -1\n"
	if _, err := ReadMETIS(strings.NewReader(input)); !errors.Is(err, graph.ErrNegativeWeight) {
		t.Fatalf("err = %v, want ErrNegativeWeight", err)
	}
}

func TestReadMETISRejectsBadNeighbor(t *testing.T) {
	input := "2 1\n3\n1\n"
	if _, err := ReadMETIS(strings.NewReader(input)); !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestMETISRoundTrip(t *testing.T) {
	g := buildCSR(t,
		[][]graph.NodeID{{1, 2}, {0, 2}, {0, 1, 3}, {2}},
		[]graph.NodeWeight{2, 1, 4, 1},
		[]graph.EdgeWeight{1, 5, 1, 2, 5, 2, 3, 3})

	var buf bytes.Buffer
	if err := WriteMETIS(&buf, g); err != nil {
		t.Fatalf("WriteMETIS: %v", err)
	}
	back, err := ReadMETIS(&buf)
	if err != nil {
		t.Fatalf("ReadMETIS: %v", err)
	}
	sameGraph(t, back, g)
}

func TestBinaryRoundTrip(t *testing.T) {
	g := buildCSR(t,
		[][]graph.NodeID{{1, 2}, {0, 2}, {0, 1, 3}, {2}},
		[]graph.NodeWeight{2, 1, 4, 1},
		[]graph.EdgeWeight{1, 5, 1, 2, 5, 2, 3, 3})

	var buf bytes.Buffer
	if err := WriteBinary(&buf, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	back, err := ReadBinary(&buf)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	sameGraph(t, back, g)
}

func TestBinaryRoundTripUnweighted(t *testing.T) {
	g := buildCSR(t, [][]graph.NodeID{{1}, {0, 2}, {1, 3}, {2}}, nil, nil)

	var buf bytes.Buffer
	if err := WriteBinary(&buf, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	back, err := ReadBinary(&buf)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	sameGraph(t, back, g)
}

func TestBinaryDetectsCorruption(t *testing.T) {
	g := buildCSR(t, [][]graph.NodeID{{1}, {0}}, nil, nil)

	var buf bytes.Buffer
	if err := WriteBinary(&buf, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	data := buf.Bytes()
	// Flip the last byte, which lies inside the last section's compressed
	// payload.
	data[len(data)-1] ^= 0xff
	if _, err := ReadBinary(bytes.NewReader(data)); err == nil {
		t.Fatal("corrupted input was accepted")
	}
}

func TestBinaryRejectsBadMagic(t *testing.T) {
	if _, err := ReadBinary(bytes.NewReader([]byte("NOTAGRAPHFILE"))); !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestPartitionRoundTrip(t *testing.T) {
	part := []graph.BlockID{0, 2, 1, 1, 0}

	var buf bytes.Buffer
	if err := WritePartition(&buf, part); err != nil {
		t.Fatalf("WritePartition: %v", err)
	}
	back, err := ReadPartition(&buf)
	if err != nil {
		t.Fatalf("ReadPartition: %v", err)
	}
	if len(back) != len(part) {
		t.Fatalf("read %d entries, want %d", len(back), len(part))
	}
	for i := range part {
		if back[i] != part[i] {
			t.Errorf("entry %d = %d, want %d", i, back[i], part[i])
		}
	}
}
