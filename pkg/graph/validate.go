package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-partition/pkg/parallel"
)

var (
	// ErrAsymmetricGraph is returned when a reverse half-edge is missing or
	// carries a different weight.
	ErrAsymmetricGraph = errors.New("graph: adjacency is not symmetric")

	// ErrNegativeWeight is returned when a node or edge weight is negative.
	ErrNegativeWeight = errors.New("graph: negative weight")
)

// ValidateWeights rejects graphs with negative node or edge weights.
func ValidateWeights(g Graph) error {
	for u := NodeID(0); u < g.N(); u++ {
		if g.NodeWeight(u) < 0 {
			return fmt.Errorf("%w: node %d has weight %d", ErrNegativeWeight, u, g.NodeWeight(u))
		}
	}
	var bad error
	for u := NodeID(0); u < g.N() && bad == nil; u++ {
		g.Neighbors(u, func(e EdgeID, v NodeID) bool {
			if w := g.EdgeWeight(e); w < 0 {
				bad = fmt.Errorf("%w: edge %d (%d,%d) has weight %d", ErrNegativeWeight, e, u, v, w)
				return false
			}
			return true
		})
	}
	return bad
}

type halfEdge struct {
	v NodeID
	w EdgeWeight
}

// ValidateSymmetry checks that every half-edge (u,v) has a reverse half-edge
// (v,u) with the same weight. Self-loops count once and are accepted.
func ValidateSymmetry(g Graph) error {
	// Collect each adjacency sorted by (neighbor, weight) so the reverse
	// lookup can binary-search per half-edge without hashing.
	adj := make([][]halfEdge, g.N())
	parallel.For(g.N(), defaultWorkers(), func(start, end NodeID, worker int) {
		for u := start; u < end; u++ {
			list := make([]halfEdge, 0, g.Degree(u))
			g.Neighbors(u, func(e EdgeID, v NodeID) bool {
				list = append(list, halfEdge{v: v, w: g.EdgeWeight(e)})
				return true
			})
			sort.Slice(list, func(i, j int) bool {
				if list[i].v != list[j].v {
					return list[i].v < list[j].v
				}
				return list[i].w < list[j].w
			})
			adj[u] = list
		}
	})

	for u := NodeID(0); u < g.N(); u++ {
		for _, he := range adj[u] {
			if he.v >= g.N() {
				return fmt.Errorf("%w: edge (%d,%d) targets a node outside the graph", ErrAsymmetricGraph, u, he.v)
			}
			if !hasHalfEdge(adj[he.v], u, he.w) {
				return fmt.Errorf("%w: edge (%d,%d) weight %d has no matching reverse edge", ErrAsymmetricGraph, u, he.v, he.w)
			}
		}
	}
	return nil
}

func hasHalfEdge(list []halfEdge, u NodeID, w EdgeWeight) bool {
	i := sort.Search(len(list), func(i int) bool {
		if list[i].v != u {
			return list[i].v > u
		}
		return list[i].w >= w
	})
	return i < len(list) && list[i].v == u && list[i].w == w
}

// Validate runs the full input validation pipeline: weight sign checks
// followed by the symmetry check.
func Validate(g Graph) error {
	if err := ValidateWeights(g); err != nil {
		return err
	}
	return ValidateSymmetry(g)
}
