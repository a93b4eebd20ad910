// Package refinement improves an existing k-way partition in place. Two
// refiners share the Refiner contract: a label-propagation refiner for cheap
// local moves and a JET refiner for parallel hill climbing with rollback. A
// balancer, which JET calls through Balance, repairs overloaded blocks by
// moving whole node sets.
package refinement

import (
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// Refiner is the common contract of the refinement passes. Initialize binds
// the refiner to a partition and resets any per-level state; Refine runs the
// refiner to completion and reports whether the edge cut strictly decreased.
type Refiner interface {
	Initialize(p *partition.PartitionedGraph)
	Refine() bool
}
