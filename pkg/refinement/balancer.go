package refinement

import (
	"math"

	"github.com/dd0wney/cluso-partition/pkg/concurrent"
	"github.com/dd0wney/cluso-partition/pkg/gain"
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// BalancerConfig tunes the move-set balancer.
type BalancerConfig struct {
	// MaxMoveSetWeight caps the weight of a single move set. Zero defaults
	// to the perfect block weight.
	MaxMoveSetWeight graph.NodeWeight

	// MaxRounds bounds the grow-select-apply rounds. Defaults to 8.
	MaxRounds int
}

func (cfg BalancerConfig) normalized() BalancerConfig {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 8
	}
	return cfg
}

// Balancer repairs overloaded blocks by moving whole move sets: connected
// node groups grown by a best-first search inside one block, moved together
// to the target they are most strongly connected to.
type Balancer struct {
	ctx *partition.Context
	cfg BalancerConfig
}

// NewBalancer creates a balancer for the given partitioning context.
func NewBalancer(ctx *partition.Context, cfg BalancerConfig) *Balancer {
	return &Balancer{ctx: ctx, cfg: cfg.normalized()}
}

// moveSet is a finalized candidate: nodes all in source, best moved together
// to target. gain is the cut change of the whole move, weight its node
// weight.
type moveSet struct {
	nodes  []graph.NodeID
	source graph.BlockID
	target graph.BlockID
	weight graph.NodeWeight
	gain   graph.EdgeWeight
	done   bool
}

// Balance moves sets out of overloaded blocks until every block fits its cap
// or no admissible set remains. The gain cache is kept in sync with every
// executed move. Returns true iff the partition is feasible afterwards.
func (b *Balancer) Balance(p *partition.PartitionedGraph, cache gain.Cache) bool {
	maxSet := b.cfg.MaxMoveSetWeight
	if maxSet <= 0 {
		maxSet = b.ctx.PerfectBlockWeight()
	}

	n := p.N()
	frontier := concurrent.NewAddressableMaxHeap(int(n))
	visited := make([]bool, n)

	for round := 0; round < b.cfg.MaxRounds; round++ {
		overloaded := b.overloadedBlocks(p)
		if len(overloaded) == 0 {
			return true
		}

		for i := range visited {
			visited[i] = false
		}
		var sets []moveSet
		for _, ob := range overloaded {
			remaining := p.BlockWeight(ob) - b.ctx.MaxBlockWeight(ob)
			sets = b.growSets(p, cache, frontier, visited, ob, remaining, maxSet, sets, true)
			var grown graph.NodeWeight
			for _, s := range sets {
				if s.source == ob {
					grown += s.weight
				}
			}
			if grown < remaining {
				sets = b.growSets(p, cache, frontier, visited, ob, remaining-grown, maxSet, sets, false)
			}
		}
		if len(sets) == 0 {
			break
		}
		if !b.applySets(p, cache, sets) {
			break
		}
	}
	return partition.TotalOverload(p, b.ctx) == 0
}

func (b *Balancer) overloadedBlocks(p *partition.PartitionedGraph) []graph.BlockID {
	var out []graph.BlockID
	for blk := graph.BlockID(0); blk < p.K(); blk++ {
		if p.BlockWeight(blk) > b.ctx.MaxBlockWeight(blk) {
			out = append(out, blk)
		}
	}
	return out
}

// growSets seeds move sets in source until their combined weight covers the
// remaining overload or the block runs out of seeds. The first sweep takes
// only border seeds; the fallback sweep takes any node of the block.
func (b *Balancer) growSets(p *partition.PartitionedGraph, cache gain.Cache, frontier *concurrent.AddressableMaxHeap, visited []bool, source graph.BlockID, remaining, maxSet graph.NodeWeight, sets []moveSet, borderOnly bool) []moveSet {
	for u := graph.NodeID(0); u < p.N() && remaining > 0; u++ {
		if visited[u] || p.Block(u) != source {
			continue
		}
		if borderOnly && !cache.IsBorderNode(u, source) {
			continue
		}
		bound := maxSet
		if remaining < bound {
			bound = remaining
		}
		s := b.growSet(p, frontier, visited, u, source, bound)
		if len(s.nodes) == 0 {
			continue
		}
		sets = append(sets, s)
		remaining -= s.weight
	}
	return sets
}

// growSet runs a best-first search from seed, keeping the frontier keyed by
// connectivity to the current set. Per added node it maintains, for every
// other block, the weight the set would pull there when moved en masse, and
// it tracks the prefix where that saving peaks. The returned set is the best
// prefix; nodes cut off by the truncation become available to later seeds.
func (b *Balancer) growSet(p *partition.PartitionedGraph, frontier *concurrent.AddressableMaxHeap, visited []bool, seed graph.NodeID, source graph.BlockID, maxWeight graph.NodeWeight) moveSet {
	g := p.Graph()

	// conns[t] is the set's outside connectivity into t; the source slot
	// tracks the connectivity the move would cut away from the home block.
	conns := make([]graph.EdgeWeight, p.K())
	inSet := make(map[graph.NodeID]struct{})
	var nodes []graph.NodeID
	var weight graph.NodeWeight

	bestLen := 0
	var bestWeight graph.NodeWeight
	var bestGain graph.EdgeWeight = math.MinInt64
	bestTarget := graph.InvalidBlockID

	frontier.Clear()
	frontier.Push(seed, 0)
	for !frontier.Empty() && weight < maxWeight {
		u := frontier.Pop()
		if visited[u] || p.Block(u) != source {
			continue
		}
		visited[u] = true
		inSet[u] = struct{}{}
		nodes = append(nodes, u)
		weight += g.NodeWeight(u)

		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			w := g.EdgeWeight(e)
			vb := p.Block(v)
			if vb != source {
				conns[vb] += w
				return true
			}
			if _, ok := inSet[v]; ok {
				conns[source] -= w
			} else {
				conns[source] += w
				if !visited[v] {
					frontier.AddKey(v, w)
				}
			}
			return true
		})

		target, ext := bestExternal(conns, source)
		if cur := ext - conns[source]; cur >= bestGain {
			bestGain = cur
			bestLen = len(nodes)
			bestWeight = weight
			bestTarget = target
		}
	}

	for _, u := range nodes[bestLen:] {
		visited[u] = false
	}
	return moveSet{
		nodes:  nodes[:bestLen],
		source: source,
		target: bestTarget,
		weight: bestWeight,
		gain:   bestGain,
	}
}

func bestExternal(conns []graph.EdgeWeight, source graph.BlockID) (graph.BlockID, graph.EdgeWeight) {
	best := graph.InvalidBlockID
	var bestConn graph.EdgeWeight
	for t := graph.BlockID(0); t < graph.BlockID(len(conns)); t++ {
		if t == source {
			continue
		}
		if best == graph.InvalidBlockID || conns[t] > bestConn {
			best = t
			bestConn = conns[t]
		}
	}
	return best, bestConn
}

// applySets repeatedly executes the candidate with the highest relative gain
// whose target still has room, ties broken toward the lighter target. Stops
// once every overloaded source is repaired or no candidate fits. Returns
// whether any set moved.
func (b *Balancer) applySets(p *partition.PartitionedGraph, cache gain.Cache, sets []moveSet) bool {
	moved := false
	for {
		best := -1
		var bestRel float64
		for i := range sets {
			s := &sets[i]
			if s.done || s.target == graph.InvalidBlockID {
				continue
			}
			if p.BlockWeight(s.source) <= b.ctx.MaxBlockWeight(s.source) {
				continue
			}
			if p.BlockWeight(s.target)+s.weight > b.ctx.MaxBlockWeight(s.target) {
				continue
			}
			rel := float64(s.gain) / float64(s.weight)
			if best < 0 || rel > bestRel ||
				(rel == bestRel && p.BlockWeight(s.target) < p.BlockWeight(sets[best].target)) {
				best = i
				bestRel = rel
			}
		}
		if best < 0 {
			return moved
		}
		s := &sets[best]
		for _, u := range s.nodes {
			p.SetBlock(u, s.target)
			cache.Move(u, s.source, s.target)
		}
		s.done = true
		moved = true
	}
}
