package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-partition/pkg/config"
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/graphio"
	"github.com/dd0wney/cluso-partition/pkg/logging"
	"github.com/dd0wney/cluso-partition/pkg/metrics"
	"github.com/dd0wney/cluso-partition/pkg/partitioner"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	k := flag.Int("k", 0, "Number of blocks (overrides config)")
	epsilon := flag.Float64("epsilon", -1, "Allowed relative imbalance (overrides config)")
	seed := flag.Int64("seed", 0, "Random seed (overrides config)")
	threads := flag.Int("threads", 0, "Worker count (overrides config)")
	ordering := flag.String("ordering", "", "Node ordering: natural, deg-buckets, implicit-deg-buckets (overrides config)")
	compress := flag.Bool("compress", false, "Compress the input adjacency before partitioning")
	format := flag.String("format", "", "Input format: metis or binary (default: by file extension)")
	output := flag.String("o", "", "Partition output file (default: <input>.part.<k>)")
	flag.Parse()

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(os.Getenv("LOG_LEVEL")))
	log := logger.With(
		logging.Component("partition"),
		logging.String("run_id", uuid.New().String()))

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <graph file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Error("invalid configuration", logging.Error(err))
			os.Exit(1)
		}
	}
	if *k > 0 {
		cfg.K = uint32(*k)
	}
	if *epsilon >= 0 {
		cfg.Epsilon = *epsilon
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *threads > 0 {
		cfg.NumThreads = *threads
	}
	if *ordering != "" {
		cfg.NodeOrdering = *ordering
	}
	if *compress {
		cfg.Compression.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", logging.Error(err))
		os.Exit(1)
	}

	g, err := readGraph(input, *format)
	if err != nil {
		log.Error("failed to read graph",
			logging.String("file", input),
			logging.Error(err))
		os.Exit(1)
	}
	log.Info("loaded graph",
		logging.String("file", input),
		logging.Nodes(uint64(g.N())),
		logging.Edges(uint64(g.M()/2)))

	opts := cfg.Options()
	opts.Logger = logger
	opts.Metrics = metrics.DefaultRegistry()

	res, err := partitioner.Partition(g, opts)
	infeasible := errors.Is(err, partitioner.ErrInfeasible)
	if err != nil && !infeasible {
		log.Error("partitioning failed", logging.Error(err))
		os.Exit(1)
	}
	if infeasible {
		log.Warn("partition is infeasible",
			logging.Imbalance(res.Imbalance),
			logging.Epsilon(cfg.Epsilon))
	}

	out := *output
	if out == "" {
		out = fmt.Sprintf("%s.part.%d", input, cfg.K)
	}
	if err := writePartition(out, res.Partition); err != nil {
		log.Error("failed to write partition",
			logging.String("file", out),
			logging.Error(err))
		os.Exit(1)
	}
	log.Info("wrote partition",
		logging.String("file", out),
		logging.Cut(int64(res.Cut)),
		logging.Imbalance(res.Imbalance),
		logging.Bool("feasible", res.Feasible),
		logging.Int("levels", res.Levels))

	if infeasible {
		os.Exit(1)
	}
}

func readGraph(path, format string) (*graph.CSRGraph, error) {
	if format == "" {
		if strings.HasSuffix(path, ".bin") {
			format = "binary"
		} else {
			format = "metis"
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "metis":
		return graphio.ReadMETIS(f)
	case "binary":
		return graphio.ReadBinary(f)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

func writePartition(path string, part []graph.BlockID) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graphio.WritePartition(f, part); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
