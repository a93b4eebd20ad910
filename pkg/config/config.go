// Package config loads and validates the partitioner configuration from YAML.
// Omitted fields keep their defaults, so a config file only needs the knobs it
// changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/initial"
	"github.com/dd0wney/cluso-partition/pkg/partitioner"
	"github.com/dd0wney/cluso-partition/pkg/refinement"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Config is the full partitioner configuration.
type Config struct {
	K            uint32  `yaml:"k" validate:"required,min=1"`
	Epsilon      float64 `yaml:"epsilon" validate:"min=0"`
	NumThreads   int     `yaml:"num_threads" validate:"min=0"`
	Seed         int64   `yaml:"seed"`
	NodeOrdering string  `yaml:"node_ordering" validate:"oneof=natural deg-buckets implicit-deg-buckets"`

	Coarsening  CoarseningConfig  `yaml:"coarsening"`
	Refinement  RefinementConfig  `yaml:"refinement"`
	Initial     InitialConfig     `yaml:"initial"`
	Compression CompressionConfig `yaml:"compression"`
}

// CoarseningConfig configures the clustering and contraction loop.
type CoarseningConfig struct {
	ContractionLimit        uint32  `yaml:"contraction_limit" validate:"min=1"`
	ClusterWeightLimit      int64   `yaml:"cluster_weight_limit" validate:"min=0"`
	ClusterWeightMultiplier float64 `yaml:"cluster_weight_multiplier" validate:"gt=0"`
	MaxLevels               int     `yaml:"max_levels" validate:"min=0"`
	NumIterations           int     `yaml:"num_iterations" validate:"min=0"`
}

// RefinementConfig configures the per-level refiners.
type RefinementConfig struct {
	LP  LPConfig  `yaml:"lp"`
	JET JETConfig `yaml:"jet"`
}

// LPConfig configures the label-propagation refiner.
type LPConfig struct {
	NumIterations        int    `yaml:"num_iterations" validate:"min=1"`
	LargeDegreeThreshold uint32 `yaml:"large_degree_threshold" validate:"min=0"`
	MaxNumNeighbors      uint32 `yaml:"max_num_neighbors" validate:"min=0"`
}

// JETConfig configures the JET refiner.
type JETConfig struct {
	NumIterations          int     `yaml:"num_iterations" validate:"min=1"`
	NumFruitlessIterations int     `yaml:"num_fruitless_iterations" validate:"min=1"`
	FruitlessThreshold     float64 `yaml:"fruitless_threshold" validate:"gt=0,lt=1"`
	CoarsePenaltyFactor    float64 `yaml:"coarse_penalty_factor" validate:"gt=0"`
	FinePenaltyFactor      float64 `yaml:"fine_penalty_factor" validate:"gt=0"`
	BalancingAlgorithm     string  `yaml:"balancing_algorithm" validate:"oneof=greedy lp"`
}

// InitialConfig configures the recursive bipartitioner.
type InitialConfig struct {
	NumAttempts int `yaml:"num_attempts" validate:"min=1"`
}

// CompressionConfig toggles the compressed adjacency input encoding.
type CompressionConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration with every knob at its default.
func Default() Config {
	return Config{
		K:            2,
		Epsilon:      0.03,
		NodeOrdering: string(partitioner.OrderNatural),
		Coarsening: CoarseningConfig{
			ContractionLimit:        2000,
			ClusterWeightMultiplier: 1.0,
			NumIterations:           5,
		},
		Refinement: RefinementConfig{
			LP: LPConfig{
				NumIterations: 5,
			},
			JET: JETConfig{
				NumIterations:          12,
				NumFruitlessIterations: 6,
				FruitlessThreshold:     0.999,
				CoarsePenaltyFactor:    0.75,
				FinePenaltyFactor:      0.25,
				BalancingAlgorithm:     string(refinement.BalanceGreedy),
			},
		},
		Initial: InitialConfig{
			NumAttempts: 4,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Options translates the configuration into partitioner options.
func (c Config) Options() partitioner.Options {
	return partitioner.Options{
		K:                       graph.BlockID(c.K),
		Epsilon:                 c.Epsilon,
		Seed:                    c.Seed,
		Workers:                 c.NumThreads,
		Ordering:                partitioner.NodeOrdering(c.NodeOrdering),
		Compress:                c.Compression.Enabled,
		ContractionLimit:        graph.NodeID(c.Coarsening.ContractionLimit),
		ClusterWeightMultiplier: c.Coarsening.ClusterWeightMultiplier,
		ClusterWeightLimit:      graph.NodeWeight(c.Coarsening.ClusterWeightLimit),
		MaxLevels:               c.Coarsening.MaxLevels,
		Coarsening: partitioner.CoarseningOptions{
			NumIterations: c.Coarsening.NumIterations,
		},
		Initial: initial.Config{
			NumAttempts: c.Initial.NumAttempts,
		},
		LP: refinement.LPConfig{
			NumIterations:        c.Refinement.LP.NumIterations,
			LargeDegreeThreshold: graph.NodeID(c.Refinement.LP.LargeDegreeThreshold),
			MaxNumNeighbors:      graph.NodeID(c.Refinement.LP.MaxNumNeighbors),
		},
		JET: refinement.JETConfig{
			NumIterations:          c.Refinement.JET.NumIterations,
			NumFruitlessIterations: c.Refinement.JET.NumFruitlessIterations,
			FruitlessThreshold:     c.Refinement.JET.FruitlessThreshold,
			CoarsePenaltyFactor:    c.Refinement.JET.CoarsePenaltyFactor,
			FinePenaltyFactor:      c.Refinement.JET.FinePenaltyFactor,
			BalancingAlgorithm:     refinement.BalanceAlgorithm(c.Refinement.JET.BalancingAlgorithm),
		},
	}
}

// formatValidationError converts validator errors into a readable message.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s fails constraint '%s'", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return err
}
