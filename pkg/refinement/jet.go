package refinement

import (
	"math"

	"github.com/dd0wney/cluso-partition/pkg/gain"
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// JETConfig tunes the JET refiner.
type JETConfig struct {
	// NumIterations caps the outer passes. Defaults to 12.
	NumIterations int

	// NumFruitlessIterations stops the loop after this many passes without
	// a significant improvement. Defaults to 6.
	NumFruitlessIterations int

	// FruitlessThreshold in (0, 1): a pass counts as an improvement only if
	// it pushes the cut below threshold * best_cut. Defaults to 0.999.
	FruitlessThreshold float64

	// CoarsePenaltyFactor and FinePenaltyFactor tolerate negative-gain
	// proposals up to penalty * internal_degree. The coarse factor applies
	// when Coarse is set; the partitioner sets it on every level above the
	// input graph. Defaults 0.75 and 0.25.
	CoarsePenaltyFactor float64
	FinePenaltyFactor   float64

	// Coarse selects the penalty factor for the current level.
	Coarse bool

	// Workers is the parallelism of a pass. Defaults to DefaultWorkers.
	Workers int

	// BalancingAlgorithm selects the rebalancing step after each pass.
	// Defaults to BalanceGreedy.
	BalancingAlgorithm BalanceAlgorithm

	// Balancer configures the greedy move-set balancer.
	Balancer BalancerConfig

	// LPBalancer configures the label-propagation refiner when it serves as
	// the rebalancing step.
	LPBalancer LPConfig
}

// BalanceAlgorithm names JET's inner balancer.
type BalanceAlgorithm string

const (
	// BalanceGreedy moves whole node sets out of overloaded blocks.
	BalanceGreedy BalanceAlgorithm = "greedy"

	// BalanceLP runs label propagation with the repair-move relaxation.
	BalanceLP BalanceAlgorithm = "lp"
)

func (cfg JETConfig) normalized() JETConfig {
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = 12
	}
	if cfg.NumFruitlessIterations <= 0 {
		cfg.NumFruitlessIterations = 6
	}
	if cfg.FruitlessThreshold <= 0 || cfg.FruitlessThreshold >= 1 {
		cfg.FruitlessThreshold = 0.999
	}
	if cfg.CoarsePenaltyFactor <= 0 {
		cfg.CoarsePenaltyFactor = 0.75
	}
	if cfg.FinePenaltyFactor <= 0 {
		cfg.FinePenaltyFactor = 0.25
	}
	if cfg.Workers <= 0 {
		cfg.Workers = parallel.DefaultWorkers()
	}
	return cfg
}

// JETRefiner moves many nodes per pass without locks: every node proposes its
// best move, an afterburner filters proposals whose gain evaporates once
// higher-gain neighbors are assumed moved, and the survivors execute
// together. After each pass the balancer repairs the block weights and the
// best partition seen is snapshotted; on stop the refiner rolls back to it.
type JETRefiner struct {
	cfg      JETConfig
	ctx      *partition.Context
	balancer *Balancer

	p     *partition.PartitionedGraph
	cache *gain.DenseCache

	gains      []graph.EdgeWeight
	targets    []graph.BlockID
	locked     []uint8
	prevLocked []uint8
}

// NewJETRefiner creates a refiner for the given partitioning context.
func NewJETRefiner(ctx *partition.Context, cfg JETConfig) *JETRefiner {
	cfg = cfg.normalized()
	return &JETRefiner{
		cfg:      cfg,
		ctx:      ctx,
		balancer: NewBalancer(ctx, cfg.Balancer),
	}
}

// Initialize binds the refiner to p, builds the gain cache, and resets the
// locked bits.
func (r *JETRefiner) Initialize(p *partition.PartitionedGraph) {
	r.p = p
	r.cache = gain.NewDenseCache(p)

	n := p.N()
	r.gains = make([]graph.EdgeWeight, n)
	r.targets = make([]graph.BlockID, n)
	r.locked = make([]uint8, n)
	r.prevLocked = make([]uint8, n)
}

// Refine runs passes until the iteration cap or the fruitless cap is hit, or
// two consecutive passes move no node, then rolls back to the best snapshot. Feasible partitions always win over
// infeasible ones; among infeasible ones the least overloaded wins. Returns
// true iff the cut of the final partition is strictly below the initial one.
func (r *JETRefiner) Refine() bool {
	p := r.p
	initialCut := partition.EdgeCut(p)

	bestCut := initialCut
	bestOverload := partition.TotalOverload(p, r.ctx)
	bestFeasible := bestOverload == 0
	bestSnapshot := p.CopyPartition()

	fruitless := 0
	zeroStreak := 0
	for iter := 0; iter < r.cfg.NumIterations && fruitless < r.cfg.NumFruitlessIterations; iter++ {
		moves := r.pass()
		r.rebalance()

		cut := partition.EdgeCut(p)
		overload := partition.TotalOverload(p, r.ctx)
		feasible := overload == 0

		better := false
		if feasible {
			better = !bestFeasible || cut < bestCut
		} else if !bestFeasible {
			better = overload < bestOverload || (overload == bestOverload && cut < bestCut)
		}

		significant := better && float64(cut) < r.cfg.FruitlessThreshold*float64(bestCut)
		if better {
			bestCut = cut
			bestOverload = overload
			bestFeasible = feasible
			copy(bestSnapshot, p.Raw())
		}
		if significant {
			fruitless = 0
		} else {
			fruitless++
		}

		// A single empty pass can be an artifact of the previous pass's
		// locks; only two in a row mean convergence.
		if moves == 0 {
			zeroStreak++
			if zeroStreak == 2 {
				break
			}
		} else {
			zeroStreak = 0
		}
	}

	p.RestorePartition(bestSnapshot)
	return bestCut < initialCut
}

func (r *JETRefiner) rebalance() {
	switch r.cfg.BalancingAlgorithm {
	case BalanceLP:
		lp := NewLPRefiner(r.ctx, r.cfg.LPBalancer)
		lp.BindGainCache(r.cache)
		lp.Initialize(r.p)
		lp.Refine()
	default:
		r.balancer.Balance(r.p, r.cache)
	}
}

func (r *JETRefiner) pass() int {
	r.locked, r.prevLocked = r.prevLocked, r.locked
	clear(r.locked)

	r.findMoves()
	r.filterMoves()
	return r.executeMoves()
}

// findMoves proposes, for every node not moved in the previous pass, the
// target block with the highest connectivity. Negative-gain proposals are
// tolerated up to the penalty fraction of the internal degree; the block
// weight caps are ignored here since the balancer repairs them afterwards.
func (r *JETRefiner) findMoves() {
	p := r.p
	penalty := r.cfg.FinePenaltyFactor
	if r.cfg.Coarse {
		penalty = r.cfg.CoarsePenaltyFactor
	}

	parallel.For(p.N(), r.cfg.Workers, func(start, end graph.NodeID, worker int) {
		for u := start; u < end; u++ {
			from := p.Block(u)
			r.gains[u] = 0
			r.targets[u] = from
			if r.prevLocked[u] != 0 {
				continue
			}

			intDegree := r.cache.Conn(u, from)
			target := graph.InvalidBlockID
			var ext graph.EdgeWeight
			for b := graph.BlockID(0); b < p.K(); b++ {
				if b == from {
					continue
				}
				if conn := r.cache.Conn(u, b); target == graph.InvalidBlockID || conn > ext {
					target = b
					ext = conn
				}
			}
			if target == graph.InvalidBlockID {
				continue
			}

			absGain := ext - intDegree
			if ext > intDegree || absGain >= -graph.EdgeWeight(math.Floor(penalty*float64(intDegree))) {
				r.gains[u] = absGain
				r.targets[u] = target
			}
		}
	})
}

// filterMoves keeps a proposal only if its gain stays non-negative when
// every neighbor with a strictly better claim is assumed to have moved
// first. The claim order is (gain, lower node id); it makes u and v reason
// symmetrically about each other without a lock.
func (r *JETRefiner) filterMoves() {
	p := r.p
	g := p.Graph()

	parallel.For(p.N(), r.cfg.Workers, func(start, end graph.NodeID, worker int) {
		for u := start; u < end; u++ {
			from := p.Block(u)
			to := r.targets[u]
			if to == from {
				continue
			}

			var projected graph.EdgeWeight
			g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
				vb := p.Block(v)
				if r.targets[v] != vb && movesFirst(r.gains[v], v, r.gains[u], u) {
					vb = r.targets[v]
				}
				switch vb {
				case to:
					projected += g.EdgeWeight(e)
				case from:
					projected -= g.EdgeWeight(e)
				}
				return true
			})
			if projected >= 0 {
				r.locked[u] = 1
			}
		}
	})
}

// movesFirst reports whether v's proposal outranks u's.
func movesFirst(gainV graph.EdgeWeight, v graph.NodeID, gainU graph.EdgeWeight, u graph.NodeID) bool {
	return gainV > gainU || (gainV == gainU && v < u)
}

// executeMoves applies every filtered move. Block assignments are stored
// directly; the weight shifts are accumulated per worker and reconciled once
// the pass is over, which doubles as the allreduce step when running on a
// single process.
func (r *JETRefiner) executeMoves() int {
	p := r.p
	g := p.Graph()
	workers := r.cfg.Workers

	deltas := make([][]graph.NodeWeight, workers)
	counts := make([]int, workers)
	for w := 0; w < workers; w++ {
		deltas[w] = make([]graph.NodeWeight, p.K())
	}

	parallel.For(p.N(), workers, func(start, end graph.NodeID, worker int) {
		delta := deltas[worker]
		for u := start; u < end; u++ {
			if r.locked[u] == 0 {
				continue
			}
			from := p.Block(u)
			to := r.targets[u]
			p.AtomicSetBlock(u, to)
			r.cache.Move(u, from, to)

			w := g.NodeWeight(u)
			delta[from] -= w
			delta[to] += w
			counts[worker]++
		}
	})

	moves := 0
	for w := 0; w < workers; w++ {
		moves += counts[w]
		for b, d := range deltas[w] {
			if d != 0 {
				p.AddBlockWeight(graph.BlockID(b), d)
			}
		}
	}
	return moves
}
