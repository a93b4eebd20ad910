// Package graphio reads and writes graphs at the process boundary: the METIS
// text format and a snappy-compressed binary format. Every reader validates
// the graph before handing it to the caller.
package graphio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-partition/pkg/graph"
)

// ErrFormat is returned when the input does not parse as the expected
// format.
var ErrFormat = errors.New("graphio: malformed input")

// ReadMETIS parses a graph in METIS format. Node and edge weights are read
// when the header's fmt field announces them; multiple node weights per node
// are rejected. The graph is validated for symmetry and non-negative weights
// before it is returned.
func ReadMETIS(r io.Reader) (*graph.CSRGraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)

	header, err := nextLine(scanner, true)
	if err != nil {
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	fields := strings.Fields(header)
	if len(fields) < 2 || len(fields) > 4 {
		return nil, fmt.Errorf("%w: header %q", ErrFormat, header)
	}

	n, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: node count %q", ErrFormat, fields[0])
	}
	m, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: edge count %q", ErrFormat, fields[1])
	}

	hasNodeWeights, hasEdgeWeights := false, false
	if len(fields) >= 3 {
		format := fields[2]
		if len(format) > 3 {
			return nil, fmt.Errorf("%w: fmt field %q", ErrFormat, format)
		}
		hasEdgeWeights = strings.HasSuffix(format, "1")
		hasNodeWeights = len(format) >= 2 && format[len(format)-2] == '1'
		if len(format) == 3 && format[0] == '1' {
			return nil, fmt.Errorf("%w: node sizes are not supported", ErrFormat)
		}
	}
	if len(fields) == 4 && fields[3] != "1" {
		return nil, fmt.Errorf("%w: %s node weights per node", ErrFormat, fields[3])
	}

	nodes := make([]graph.EdgeID, n+1)
	edges := make([]graph.NodeID, 0, 2*m)
	var nodeWeights []graph.NodeWeight
	var edgeWeights []graph.EdgeWeight
	if hasNodeWeights {
		nodeWeights = make([]graph.NodeWeight, n)
	}
	if hasEdgeWeights {
		edgeWeights = make([]graph.EdgeWeight, 0, 2*m)
	}

	for u := uint64(0); u < n; u++ {
		line, err := nextLine(scanner, false)
		if err != nil {
			return nil, fmt.Errorf("%w: adjacency for node %d missing", ErrFormat, u+1)
		}
		tokens := strings.Fields(line)
		i := 0

		if hasNodeWeights {
			if len(tokens) == 0 {
				return nil, fmt.Errorf("%w: node %d has no weight", ErrFormat, u+1)
			}
			w, err := strconv.ParseInt(tokens[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: node weight %q", ErrFormat, tokens[0])
			}
			nodeWeights[u] = w
			i = 1
		}

		for i < len(tokens) {
			v, err := strconv.ParseUint(tokens[i], 10, 32)
			if err != nil || v < 1 || v > n {
				return nil, fmt.Errorf("%w: neighbor %q of node %d", ErrFormat, tokens[i], u+1)
			}
			edges = append(edges, graph.NodeID(v-1))
			i++

			if hasEdgeWeights {
				if i >= len(tokens) {
					return nil, fmt.Errorf("%w: edge weight missing on node %d", ErrFormat, u+1)
				}
				w, err := strconv.ParseInt(tokens[i], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: edge weight %q", ErrFormat, tokens[i])
				}
				edgeWeights = append(edgeWeights, w)
				i++
			}
		}
		nodes[u+1] = graph.EdgeID(len(edges))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if uint64(len(edges)) != 2*m {
		return nil, fmt.Errorf("%w: %d half-edges, header announced %d edges", ErrFormat, len(edges), m)
	}

	g := graph.NewCSRGraph(nodes, edges, nodeWeights, edgeWeights, false)
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// nextLine returns the next non-comment line. Empty lines are valid
// adjacency rows of isolated nodes, so they are skipped only when asked.
func nextLine(scanner *bufio.Scanner, skipEmpty bool) (string, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "%") || (skipEmpty && line == "") {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// WriteMETIS writes g in METIS format. Weight columns appear only when some
// node or edge weight differs from one.
func WriteMETIS(w io.Writer, g graph.Graph) error {
	bw := bufio.NewWriter(w)

	hasNodeWeights, hasEdgeWeights := false, false
	for u := graph.NodeID(0); u < g.N() && !hasNodeWeights; u++ {
		hasNodeWeights = g.NodeWeight(u) != 1
	}
	for u := graph.NodeID(0); u < g.N() && !hasEdgeWeights; u++ {
		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			hasEdgeWeights = g.EdgeWeight(e) != 1
			return !hasEdgeWeights
		})
	}

	fmt.Fprintf(bw, "%d %d", g.N(), g.M()/2)
	if hasNodeWeights || hasEdgeWeights {
		format := "0"
		if hasNodeWeights {
			format += "1"
		} else {
			format += "0"
		}
		if hasEdgeWeights {
			format += "1"
		} else {
			format += "0"
		}
		fmt.Fprintf(bw, " %s", format)
	}
	fmt.Fprintln(bw)

	for u := graph.NodeID(0); u < g.N(); u++ {
		first := true
		if hasNodeWeights {
			fmt.Fprintf(bw, "%d", g.NodeWeight(u))
			first = false
		}
		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			if !first {
				bw.WriteByte(' ')
			}
			first = false
			fmt.Fprintf(bw, "%d", v+1)
			if hasEdgeWeights {
				fmt.Fprintf(bw, " %d", g.EdgeWeight(e))
			}
			return true
		})
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WritePartition writes one block id per line, in node order.
func WritePartition(w io.Writer, part []graph.BlockID) error {
	bw := bufio.NewWriter(w)
	for _, b := range part {
		fmt.Fprintf(bw, "%d\n", b)
	}
	return bw.Flush()
}

// ReadPartition parses a partition written by WritePartition.
func ReadPartition(r io.Reader) ([]graph.BlockID, error) {
	scanner := bufio.NewScanner(r)
	var part []graph.BlockID
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		b, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: block id %q", ErrFormat, line)
		}
		part = append(part, graph.BlockID(b))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return part, nil
}
