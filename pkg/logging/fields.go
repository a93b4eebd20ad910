package logging

import "time"

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration records d as fractional seconds, so downstream tooling can
// aggregate without parsing unit suffixes.
func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.Seconds()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Pipeline vocabulary shared by the driver, the refiners, and the CLI.

func Component(name string) Field {
	return String("component", name)
}

func Nodes(n uint64) Field {
	return Uint64("nodes", n)
}

func Edges(m uint64) Field {
	return Uint64("edges", m)
}

func Blocks(k int) Field {
	return Int("k", k)
}

func Epsilon(eps float64) Field {
	return Float64("epsilon", eps)
}

// CoarseLevel tags a record with the coarsening hierarchy level it concerns,
// 0 being the input graph.
func CoarseLevel(level int) Field {
	return Int("level", level)
}

func ClusterWeight(w int64) Field {
	return Int64("max_cluster_weight", w)
}

func Cut(cut int64) Field {
	return Int64("cut", cut)
}

func Imbalance(imb float64) Field {
	return Float64("imbalance", imb)
}

func Elapsed(d time.Duration) Field {
	return Duration("elapsed", d)
}
