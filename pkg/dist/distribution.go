// Package dist holds the process-level building blocks of distributed
// partitioning: contiguous node-range ownership, ghost node translation, and
// a sparse all-to-all exchange. Only an in-process transport ships here; wire
// transports plug in behind the Exchanger interface.
package dist

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-partition/pkg/graph"
)

// PEID identifies a process of the distributed run.
type PEID int

// NodeDistribution assigns every global node to the PE owning its contiguous
// range. starts has one entry per PE plus the total node count as sentinel.
type NodeDistribution struct {
	starts []graph.NodeID
}

// NewDistribution builds a distribution from explicit range starts. The
// slice must be non-decreasing, start at 0, and end with the total node
// count.
func NewDistribution(starts []graph.NodeID) *NodeDistribution {
	if len(starts) < 2 || starts[0] != 0 {
		panic(fmt.Sprintf("malformed distribution starts %v", starts))
	}
	for i := 1; i < len(starts); i++ {
		if starts[i] < starts[i-1] {
			panic(fmt.Sprintf("distribution starts %v not sorted", starts))
		}
	}
	return &NodeDistribution{starts: starts}
}

// NewUniformDistribution splits n nodes into numPEs near-equal ranges, the
// remainder spread over the first PEs.
func NewUniformDistribution(n graph.NodeID, numPEs int) *NodeDistribution {
	starts := make([]graph.NodeID, numPEs+1)
	base := n / graph.NodeID(numPEs)
	rem := n % graph.NodeID(numPEs)
	for pe := 0; pe < numPEs; pe++ {
		starts[pe+1] = starts[pe] + base
		if graph.NodeID(pe) < rem {
			starts[pe+1]++
		}
	}
	return &NodeDistribution{starts: starts}
}

// NumPEs returns the number of processes.
func (d *NodeDistribution) NumPEs() int {
	return len(d.starts) - 1
}

// N returns the total number of global nodes.
func (d *NodeDistribution) N() graph.NodeID {
	return d.starts[len(d.starts)-1]
}

// Start returns the first global node owned by pe.
func (d *NodeDistribution) Start(pe PEID) graph.NodeID {
	return d.starts[pe]
}

// End returns one past the last global node owned by pe.
func (d *NodeDistribution) End(pe PEID) graph.NodeID {
	return d.starts[pe+1]
}

// Size returns the number of nodes owned by pe.
func (d *NodeDistribution) Size(pe PEID) graph.NodeID {
	return d.starts[pe+1] - d.starts[pe]
}

// Owner returns the PE owning the global node.
func (d *NodeDistribution) Owner(global graph.NodeID) PEID {
	i := sort.Search(len(d.starts), func(i int) bool {
		return d.starts[i] > global
	})
	return PEID(i - 1)
}

// ToLocal translates a global node into the owner's local numbering.
func (d *NodeDistribution) ToLocal(global graph.NodeID) graph.NodeID {
	return global - d.starts[d.Owner(global)]
}

// ToGlobal translates pe's local node into global numbering.
func (d *NodeDistribution) ToGlobal(pe PEID, local graph.NodeID) graph.NodeID {
	return d.starts[pe] + local
}
