// Package partitioner drives the multilevel pipeline: node reordering,
// coarsening, initial partitioning on the coarsest graph, and refinement on
// every level of the way back up.
package partitioner

import (
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-partition/pkg/coarsening"
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/initial"
	"github.com/dd0wney/cluso-partition/pkg/logging"
	"github.com/dd0wney/cluso-partition/pkg/metrics"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
	"github.com/dd0wney/cluso-partition/pkg/partition"
	"github.com/dd0wney/cluso-partition/pkg/refinement"
)

// ErrInfeasible reports that the final partition exceeds the allowed
// imbalance. The partition itself is still returned alongside the error.
var ErrInfeasible = errors.New("partition exceeds the allowed imbalance")

// NodeOrdering selects how input nodes are arranged before partitioning.
type NodeOrdering string

const (
	// OrderNatural keeps the input order.
	OrderNatural NodeOrdering = "natural"

	// OrderDegreeBuckets physically rearranges the graph into exponential
	// degree buckets and strips isolated nodes for the duration of the
	// pipeline.
	OrderDegreeBuckets NodeOrdering = "deg-buckets"

	// OrderImplicitDegreeBuckets leaves the graph in place and only schedules
	// the clusterer in derived bucket order.
	OrderImplicitDegreeBuckets NodeOrdering = "implicit-deg-buckets"
)

// Options configures a partitioning run.
type Options struct {
	// K is the number of blocks. Required, at least 1.
	K graph.BlockID

	// Epsilon is the allowed relative imbalance. 0.03 means every block may
	// exceed the perfect weight by 3 percent.
	Epsilon float64

	// Seed feeds every randomized phase.
	Seed int64

	// Workers is the parallelism of every phase. Defaults to DefaultWorkers.
	Workers int

	// Ordering selects the node arrangement. Defaults to OrderNatural.
	Ordering NodeOrdering

	// Compress encodes the input graph with the compressed adjacency format
	// before partitioning. Requires a sorted graph, so it only takes effect
	// together with OrderDegreeBuckets or an already sorted input.
	Compress bool

	// ContractionLimit stops coarsening once the graph has at most this many
	// nodes. Defaults to 2000.
	ContractionLimit graph.NodeID

	// ClusterWeightMultiplier scales the per-level cluster weight cap
	// total_weight/max(ContractionLimit, K). Defaults to 1.0.
	ClusterWeightMultiplier float64

	// ClusterWeightLimit, when positive, caps the cluster weight regardless
	// of the multiplier.
	ClusterWeightLimit graph.NodeWeight

	// MaxLevels bounds the hierarchy depth. Zero means unbounded.
	MaxLevels int

	// Coarsening configures the label-propagation clusterer run per level.
	Coarsening CoarseningOptions

	// Initial configures the recursive bipartitioner on the coarsest graph.
	Initial initial.Config

	// LP configures the label-propagation refiner run before JET on every
	// level.
	LP refinement.LPConfig

	// JET configures the JET refiner. The Coarse flag is managed by the
	// driver per level.
	JET refinement.JETConfig

	// Logger receives per-phase progress. Defaults to the package default
	// logger.
	Logger logging.Logger

	// Metrics, when set, receives per-phase instrumentation.
	Metrics *metrics.Registry
}

// CoarseningOptions is the per-level clusterer configuration.
type CoarseningOptions struct {
	NumIterations        int
	LargeDegreeThreshold graph.NodeID
	MaxNumNeighbors      graph.NodeID
}

func (o Options) normalized() Options {
	if o.Workers <= 0 {
		o.Workers = parallel.DefaultWorkers()
	}
	if o.Ordering == "" {
		o.Ordering = OrderNatural
	}
	if o.ContractionLimit == 0 {
		o.ContractionLimit = 2000
	}
	if o.ClusterWeightMultiplier <= 0 {
		o.ClusterWeightMultiplier = 1.0
	}
	if o.Logger == nil {
		o.Logger = logging.DefaultLogger()
	}
	return o
}

// Result is the outcome of a partitioning run.
type Result struct {
	// Partition assigns every input node its block, in input node order.
	Partition []graph.BlockID

	// Cut is the edge cut of the final partition.
	Cut graph.EdgeWeight

	// Imbalance is max_b weight(b)/perfect_weight - 1 of the final partition.
	Imbalance float64

	// Feasible reports whether every block respects its weight cap.
	Feasible bool

	// Levels is the depth of the coarsening hierarchy that was built.
	Levels int
}

// Partition computes a k-way partition of g. The input must be symmetric with
// non-negative weights; it is validated before any work happens. When the
// final partition is infeasible the result is returned together with
// ErrInfeasible.
func Partition(g *graph.CSRGraph, opts Options) (*Result, error) {
	start := time.Now()
	opts = opts.normalized()
	if opts.K < 1 {
		return nil, fmt.Errorf("invalid block count %d", opts.K)
	}
	if err := graph.Validate(g); err != nil {
		if opts.Metrics != nil {
			opts.Metrics.RecordRun("invalid", time.Since(start))
		}
		return nil, err
	}
	if opts.Metrics != nil {
		opts.Metrics.RecordInputGraph(uint64(g.N()), uint64(g.M()/2))
	}

	log := opts.Logger.With(logging.Component("partitioner"))
	run := logging.StartTimer(log, "partition",
		logging.Nodes(uint64(g.N())),
		logging.Edges(uint64(g.M()/2)),
		logging.Blocks(int(opts.K)),
		logging.Epsilon(opts.Epsilon))

	if opts.K == 1 || g.N() == 0 {
		res := &Result{Partition: make([]graph.BlockID, g.N()), Feasible: true}
		if opts.Metrics != nil {
			opts.Metrics.RecordRun("success", time.Since(start))
		}
		run.End()
		return res, nil
	}

	d := &driver{opts: opts, log: log}
	res, err := d.run(g)
	if opts.Metrics != nil {
		status := "success"
		if errors.Is(err, ErrInfeasible) {
			status = "infeasible"
		}
		opts.Metrics.RecordRun(status, time.Since(start))
	}
	if err != nil {
		run.EndError(err)
		return res, err
	}
	run.End()
	return res, nil
}

type driver struct {
	opts Options
	log  logging.Logger
}

func (d *driver) run(input *graph.CSRGraph) (*Result, error) {
	work := graph.Graph(input)
	var perm *graph.NodePermutation
	var isolated graph.NodeID
	csr := input

	if d.opts.Ordering == OrderDegreeBuckets {
		t := logging.StartTimer(d.log, "rearrange")
		csr, perm = graph.RearrangeByDegreeBuckets(input)
		isolated = graph.CountIsolatedNodes(csr)
		if isolated > 0 && isolated < csr.N() {
			csr.RemoveIsolatedNodes(isolated)
		} else {
			isolated = 0
		}
		work = csr
		t.End()
	}

	if d.opts.Compress && work.Sorted() {
		t := logging.StartTimer(d.log, "compress")
		compressed := graph.CompressCSR(csr, graph.DefaultIntervalThreshold)
		t.End()
		d.log.Info("compressed input",
			logging.Int("bytes", compressed.CompressedSize()))
		if d.opts.Metrics != nil {
			d.opts.Metrics.RecordCompression(compressed.CompressedSize(), uint64(work.M()))
		}
		work = compressed
	}

	part, levels := d.partitionCore(work)

	if isolated > 0 {
		csr.IntegrateIsolatedNodes()
		part = extendWithIsolated(csr, part, d.opts.K)
	}
	if perm != nil && !perm.Identity() {
		part = perm.ProjectPartition(part)
	}

	p := partition.NewPartitionedGraph(input, d.opts.K, part)
	ctx := partition.NewContext(input.TotalNodeWeight(), d.opts.K, d.opts.Epsilon)
	res := &Result{
		Partition: part,
		Cut:       partition.EdgeCut(p),
		Imbalance: partition.Imbalance(p, ctx),
		Feasible:  partition.Feasible(p, ctx),
		Levels:    levels,
	}
	if d.opts.Metrics != nil {
		d.opts.Metrics.RecordPartitionQuality(int64(res.Cut), res.Imbalance,
			res.Feasible, partition.SummarizeBlockWeights(p))
	}
	d.log.Info("partitioned",
		logging.Cut(int64(res.Cut)),
		logging.Imbalance(res.Imbalance),
		logging.Bool("feasible", res.Feasible),
		logging.Int("levels", res.Levels))

	if !res.Feasible {
		return res, fmt.Errorf("%w: imbalance %.4f > epsilon %.4f",
			ErrInfeasible, res.Imbalance, d.opts.Epsilon)
	}
	return res, nil
}

// partitionCore runs the multilevel pipeline on the prepared graph and
// returns the partition in its node order.
func (d *driver) partitionCore(work graph.Graph) ([]graph.BlockID, int) {
	c := coarsening.New(work, coarsening.Config{
		MaxLevels:            d.opts.MaxLevels,
		NumIterations:        d.opts.Coarsening.NumIterations,
		LargeDegreeThreshold: d.opts.Coarsening.LargeDegreeThreshold,
		MaxNumNeighbors:      d.opts.Coarsening.MaxNumNeighbors,
		Seed:                 d.opts.Seed,
		Workers:              d.opts.Workers,
		UseBucketOrder:       d.opts.Ordering == OrderImplicitDegreeBuckets,
	})

	t := logging.StartTimer(d.log, "coarsen")
	coarsenStart := time.Now()
	cur := work
	for cur.N() > d.opts.ContractionLimit && !c.Converged() {
		limit := d.maxClusterWeight(cur)
		next, ok := c.CoarsenOnce(limit)
		if !ok {
			break
		}
		cur = next
		d.log.Debug("coarsened level",
			logging.CoarseLevel(c.Level()),
			logging.Nodes(uint64(cur.N())),
			logging.Edges(uint64(cur.M()/2)),
			logging.ClusterWeight(limit))
		if d.opts.Metrics != nil {
			d.opts.Metrics.RecordCoarseningLevel(c.Level(), uint64(cur.N()), uint64(cur.M()/2))
		}
	}
	levels := c.Level()
	if d.opts.Metrics != nil {
		d.opts.Metrics.RecordCoarsening(levels, time.Since(coarsenStart))
	}
	t.End()

	ti := logging.StartTimer(d.log, "initial partition",
		logging.Nodes(uint64(cur.N())))
	initialStart := time.Now()
	part := initial.PartitionKWay(cur, d.opts.K, d.opts.Epsilon, initial.Config{
		Seed:        d.opts.Seed,
		NumAttempts: d.opts.Initial.NumAttempts,
	})
	if d.opts.Metrics != nil {
		cut := partition.EdgeCut(partition.NewPartitionedGraph(cur, d.opts.K, part))
		d.opts.Metrics.RecordInitialPartition(int64(cut), time.Since(initialStart))
	}
	ti.End()

	// Node weight is conserved across contraction, so one context serves
	// every level.
	ctx := partition.NewContext(work.TotalNodeWeight(), d.opts.K, d.opts.Epsilon)

	tr := logging.StartTimer(d.log, "uncoarsen and refine")
	for {
		d.refine(cur, part, ctx, c.Level() > 0)
		if c.Level() == 0 {
			break
		}
		part, cur = c.UncoarsenOnce(part)
	}
	tr.End()
	return part, levels
}

func (d *driver) maxClusterWeight(cur graph.Graph) graph.NodeWeight {
	divisor := graph.NodeWeight(d.opts.ContractionLimit)
	if graph.NodeWeight(d.opts.K) > divisor {
		divisor = graph.NodeWeight(d.opts.K)
	}
	w := graph.NodeWeight(d.opts.ClusterWeightMultiplier * float64(cur.TotalNodeWeight()) / float64(divisor))
	if d.opts.ClusterWeightLimit > 0 && w > d.opts.ClusterWeightLimit {
		w = d.opts.ClusterWeightLimit
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (d *driver) refine(g graph.Graph, part []graph.BlockID, ctx *partition.Context, coarse bool) {
	p := partition.NewPartitionedGraph(g, d.opts.K, part)

	lpCfg := d.opts.LP
	lpCfg.Seed = d.opts.Seed
	lpCfg.Workers = d.opts.Workers
	lp := refinement.NewLPRefiner(ctx, lpCfg)
	lp.Initialize(p)
	d.runRefiner("lp", lp, part)

	jetCfg := d.opts.JET
	jetCfg.Coarse = coarse
	jetCfg.Workers = d.opts.Workers
	jetCfg.LPBalancer.Seed = d.opts.Seed
	jet := refinement.NewJETRefiner(ctx, jetCfg)
	jet.Initialize(p)
	d.runRefiner("jet", jet, part)
}

func (d *driver) runRefiner(name string, r refinement.Refiner, part []graph.BlockID) {
	if d.opts.Metrics == nil {
		r.Refine()
		return
	}
	before := make([]graph.BlockID, len(part))
	copy(before, part)
	start := time.Now()
	r.Refine()
	var moves int64
	for u := range part {
		if part[u] != before[u] {
			moves++
		}
	}
	d.opts.Metrics.RecordRefinementPass(name, moves, time.Since(start))
}

// extendWithIsolated assigns the reintegrated isolated tail nodes to the
// lightest blocks. The partition of the non-isolated prefix is kept.
func extendWithIsolated(g graph.Graph, part []graph.BlockID, k graph.BlockID) []graph.BlockID {
	weights := make([]graph.NodeWeight, k)
	for u, b := range part {
		weights[b] += g.NodeWeight(graph.NodeID(u))
	}

	full := make([]graph.BlockID, g.N())
	copy(full, part)
	for u := graph.NodeID(len(part)); u < g.N(); u++ {
		lightest := graph.BlockID(0)
		for b := graph.BlockID(1); b < k; b++ {
			if weights[b] < weights[lightest] {
				lightest = b
			}
		}
		full[u] = lightest
		weights[lightest] += g.NodeWeight(u)
	}
	return full
}
