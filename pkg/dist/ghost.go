package dist

import (
	"fmt"

	"github.com/dd0wney/cluso-partition/pkg/graph"
)

// GhostTable maps between the local numbering of one PE and the global
// numbering of the distribution. Owned nodes occupy [0, n); ghost copies of
// foreign interface nodes are appended at [n, n+NumGhosts()).
type GhostTable struct {
	dist *NodeDistribution
	me   PEID
	n    graph.NodeID

	globalToGhost map[graph.NodeID]graph.NodeID
	ghostToGlobal []graph.NodeID
}

// NewGhostTable creates an empty ghost table for the given PE.
func NewGhostTable(dist *NodeDistribution, me PEID) *GhostTable {
	return &GhostTable{
		dist:          dist,
		me:            me,
		n:             dist.Size(me),
		globalToGhost: make(map[graph.NodeID]graph.NodeID),
	}
}

// N returns the number of owned nodes.
func (t *GhostTable) N() graph.NodeID {
	return t.n
}

// NumGhosts returns the number of registered ghost copies.
func (t *GhostTable) NumGhosts() graph.NodeID {
	return graph.NodeID(len(t.ghostToGlobal))
}

// AddGhost registers a ghost copy of a foreign global node and returns its
// local id. Registering the same node twice returns the same id.
func (t *GhostTable) AddGhost(global graph.NodeID) graph.NodeID {
	if owner := t.dist.Owner(global); owner == t.me {
		panic(fmt.Sprintf("node %d is owned by this PE, not a ghost", global))
	}
	if lnode, ok := t.globalToGhost[global]; ok {
		return lnode
	}
	lnode := t.n + graph.NodeID(len(t.ghostToGlobal))
	t.globalToGhost[global] = lnode
	t.ghostToGlobal = append(t.ghostToGlobal, global)
	return lnode
}

// IsGhost reports whether lnode is a ghost copy rather than an owned node.
func (t *GhostTable) IsGhost(lnode graph.NodeID) bool {
	return lnode >= t.n
}

// GlobalID translates a local node, owned or ghost, into global numbering.
func (t *GhostTable) GlobalID(lnode graph.NodeID) graph.NodeID {
	if lnode < t.n {
		return t.dist.ToGlobal(t.me, lnode)
	}
	return t.ghostToGlobal[lnode-t.n]
}

// GhostOwner returns the PE owning the ghost copy lnode.
func (t *GhostTable) GhostOwner(lnode graph.NodeID) PEID {
	return t.dist.Owner(t.ghostToGlobal[lnode-t.n])
}

// MapForeignNode translates a node id as numbered on pe into this PE's local
// numbering. Owned nodes map into [0, n); foreign nodes must have a
// registered ghost copy.
func (t *GhostTable) MapForeignNode(lnode graph.NodeID, pe PEID) graph.NodeID {
	global := t.dist.ToGlobal(pe, lnode)
	if t.dist.Owner(global) == t.me {
		return global - t.dist.Start(t.me)
	}
	ghost, ok := t.globalToGhost[global]
	if !ok {
		panic(fmt.Sprintf("no ghost copy of global node %d (local %d on PE %d)", global, lnode, pe))
	}
	return ghost
}
