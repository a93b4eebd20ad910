package partition

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
)

// EdgeCut returns the total weight of edges crossing block boundaries. Each
// undirected edge is counted once.
func EdgeCut(p *PartitionedGraph) graph.EdgeWeight {
	g := p.Graph()
	workers := parallel.DefaultWorkers()
	locals := make([]graph.EdgeWeight, workers)

	parallel.ForStatic(g.N(), workers, func(start, end graph.NodeID, worker int) {
		var local graph.EdgeWeight
		for u := start; u < end; u++ {
			bu := p.Block(u)
			g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
				if u < v && p.Block(v) != bu {
					local += g.EdgeWeight(e)
				}
				return true
			})
		}
		locals[worker] = local
	})

	var cut graph.EdgeWeight
	for _, local := range locals {
		cut += local
	}
	return cut
}

// Imbalance returns max_b block_weight[b] / ceil(total/k) - 1.
func Imbalance(p *PartitionedGraph, ctx *Context) float64 {
	weights := make([]float64, p.K())
	for b := graph.BlockID(0); b < p.K(); b++ {
		weights[b] = float64(p.BlockWeight(b))
	}
	return floats.Max(weights)/float64(ctx.PerfectBlockWeight()) - 1.0
}

// Feasible reports whether every block respects its weight cap.
func Feasible(p *PartitionedGraph, ctx *Context) bool {
	for b := graph.BlockID(0); b < p.K(); b++ {
		if p.BlockWeight(b) > ctx.MaxBlockWeight(b) {
			return false
		}
	}
	return true
}

// TotalOverload sums max(0, block_weight[b] - cap[b]) over all blocks.
func TotalOverload(p *PartitionedGraph, ctx *Context) graph.NodeWeight {
	var total graph.NodeWeight
	for b := graph.BlockID(0); b < p.K(); b++ {
		if over := p.BlockWeight(b) - ctx.MaxBlockWeight(b); over > 0 {
			total += over
		}
	}
	return total
}

// BlockWeightStats summarizes the block weight distribution.
type BlockWeightStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// BlockWeights returns the block weight distribution as floats, in block
// order.
func BlockWeights(p *PartitionedGraph) []float64 {
	weights := make([]float64, p.K())
	for b := graph.BlockID(0); b < p.K(); b++ {
		weights[b] = float64(p.BlockWeight(b))
	}
	return weights
}

// SummarizeBlockWeights computes the distribution summary reported after a
// run.
func SummarizeBlockWeights(p *PartitionedGraph) BlockWeightStats {
	weights := BlockWeights(p)
	mean, std := stat.MeanStdDev(weights, nil)
	if p.K() == 1 {
		std = 0
	}
	return BlockWeightStats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(weights),
		Max:    floats.Max(weights),
	}
}

// Validate checks partition totality and block-weight consistency. It is a
// debugging aid for refiner development.
func Validate(p *PartitionedGraph) bool {
	counted := make([]graph.NodeWeight, p.K())
	for u := graph.NodeID(0); u < p.N(); u++ {
		b := p.Block(u)
		if b >= p.K() {
			return false
		}
		counted[b] += p.Graph().NodeWeight(u)
	}
	for b := graph.BlockID(0); b < p.K(); b++ {
		if counted[b] != p.BlockWeight(b) {
			return false
		}
	}
	return true
}
