package refinement

import (
	"math/rand"
	"sync/atomic"

	"github.com/dd0wney/cluso-partition/pkg/concurrent"
	"github.com/dd0wney/cluso-partition/pkg/gain"
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// LPConfig tunes the label-propagation refiner.
type LPConfig struct {
	// NumIterations caps the number of passes. Defaults to 5.
	NumIterations int

	// LargeDegreeThreshold enables neighborhood sampling for nodes at or
	// above this degree. Zero disables sampling.
	LargeDegreeThreshold graph.NodeID

	// MaxNumNeighbors bounds the sampled neighborhood of a large-degree
	// node.
	MaxNumNeighbors graph.NodeID

	// Seed feeds the per-worker tie-break generators.
	Seed int64

	// Workers is the parallelism of a pass. Defaults to DefaultWorkers.
	Workers int
}

func (cfg LPConfig) normalized() LPConfig {
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = parallel.DefaultWorkers()
	}
	return cfg
}

// LPRefiner runs label propagation with blocks as labels. A node adopts the
// adjacent block it is most strongly connected to, subject to the block
// weight caps. The cap is relaxed only for repair moves out of a block that
// was already overloaded when the refiner was initialized.
type LPRefiner struct {
	cfg LPConfig
	ctx *partition.Context

	p               *partition.PartitionedGraph
	initialOverload []graph.NodeWeight
	cache           gain.Cache
}

// NewLPRefiner creates a refiner for the given partitioning context.
func NewLPRefiner(ctx *partition.Context, cfg LPConfig) *LPRefiner {
	return &LPRefiner{cfg: cfg.normalized(), ctx: ctx}
}

// BindGainCache makes the refiner mirror every executed move into c. Used
// when the refiner runs as JET's inner balancer, where the caller's gain
// cache must stay in sync.
func (r *LPRefiner) BindGainCache(c gain.Cache) {
	r.cache = c
}

// Initialize binds the refiner to p and snapshots the per-block overloads
// that gate repair moves.
func (r *LPRefiner) Initialize(p *partition.PartitionedGraph) {
	r.p = p
	r.initialOverload = make([]graph.NodeWeight, p.K())
	for b := graph.BlockID(0); b < p.K(); b++ {
		if over := p.BlockWeight(b) - r.ctx.MaxBlockWeight(b); over > 0 {
			r.initialOverload[b] = over
		}
	}
}

// Refine iterates passes until one performs zero moves or the iteration cap
// is reached. Returns true iff the edge cut strictly decreased.
func (r *LPRefiner) Refine() bool {
	before := partition.EdgeCut(r.p)
	for iter := 0; iter < r.cfg.NumIterations; iter++ {
		if r.pass() == 0 {
			break
		}
	}
	return partition.EdgeCut(r.p) < before
}

func (r *LPRefiner) pass() int64 {
	n := r.p.N()
	workers := r.cfg.Workers

	ratings := make([]*concurrent.RatingMap, workers)
	rngs := make([]*rand.Rand, workers)
	for w := 0; w < workers; w++ {
		ratings[w] = concurrent.NewRatingMap()
		ratings[w].SetMaxEntries(int(r.p.K()))
		rngs[w] = rand.New(rand.NewSource(r.cfg.Seed + int64(w)))
	}

	var moves atomic.Int64
	parallel.For(n, workers, func(start, end graph.NodeID, worker int) {
		var local int64
		for u := start; u < end; u++ {
			if r.moveNode(u, ratings[worker], rngs[worker]) {
				local++
			}
		}
		moves.Add(local)
	})
	return moves.Load()
}

func (r *LPRefiner) moveNode(u graph.NodeID, rating *concurrent.RatingMap, rng *rand.Rand) bool {
	g := r.p.Graph()
	degree := g.Degree(u)
	if degree == 0 {
		return false
	}

	from := r.p.Block(u)
	uWeight := g.NodeWeight(u)

	rating.Clear()
	r.rateNeighborhood(u, degree, rating, rng)

	best := from
	bestRating := rating.Get(from)
	bestOverload := r.overloadAfter(from, 0)
	found := false

	rating.Entries(func(b graph.BlockID, conn int64) {
		if b == from {
			return
		}
		if r.p.BlockWeight(b)+uWeight > r.ctx.MaxBlockWeight(b) {
			// Overfull targets are admissible only for repair moves out
			// of a block that started the refiner overloaded and still is.
			if r.initialOverload[from] == 0 || r.p.BlockWeight(from) <= r.ctx.MaxBlockWeight(from) {
				return
			}
		}
		over := r.overloadAfter(b, uWeight)
		switch {
		case conn > bestRating:
		case conn == bestRating && over < bestOverload:
		case conn == bestRating && over == bestOverload && rng.Intn(2) == 0:
		default:
			return
		}
		best = b
		bestRating = conn
		bestOverload = over
		found = true
	})
	if !found || best == from {
		return false
	}

	if r.p.BlockWeight(best)+uWeight <= r.ctx.MaxBlockWeight(best) {
		if !r.p.TryMoveWeight(from, best, uWeight, r.ctx.MaxBlockWeight(best)) {
			return false
		}
	} else {
		r.p.AddBlockWeight(best, uWeight)
		r.p.AddBlockWeight(from, -uWeight)
	}
	r.p.AtomicSetBlock(u, best)
	if r.cache != nil {
		r.cache.Move(u, from, best)
	}
	return true
}

// overloadAfter returns the overload of b once extra weight lands in it. For
// the node's own block pass extra = 0: staying keeps the current overload.
func (r *LPRefiner) overloadAfter(b graph.BlockID, extra graph.NodeWeight) graph.NodeWeight {
	over := r.p.BlockWeight(b) + extra - r.ctx.MaxBlockWeight(b)
	if over < 0 {
		return 0
	}
	return over
}

func (r *LPRefiner) rateNeighborhood(u graph.NodeID, degree graph.NodeID, rating *concurrent.RatingMap, rng *rand.Rand) {
	g := r.p.Graph()

	sample := r.cfg.LargeDegreeThreshold > 0 && degree >= r.cfg.LargeDegreeThreshold
	var keep float64
	if sample {
		keep = float64(r.cfg.MaxNumNeighbors) / float64(degree)
	}

	visited := graph.NodeID(0)
	g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		if sample {
			if rng.Float64() >= keep {
				return true
			}
			visited++
			if visited > r.cfg.MaxNumNeighbors {
				return false
			}
		}
		rating.Add(r.p.Block(v), g.EdgeWeight(e))
		return true
	})
}
