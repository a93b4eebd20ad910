package graphio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-partition/pkg/graph"
)

// Binary format: [magic:8][version:4][flags:1][n:4][m:4] followed by snappy
// sections for the adjacency offsets, the half-edges, and the weight arrays
// announced by the flags. Each section is framed as
// [rawLen:4][compressedLen:4][crc:4][compressed bytes], checksummed over the
// compressed bytes.

var binaryMagic = [8]byte{'C', 'L', 'S', 'O', 'G', 'R', 'P', 'H'}

const binaryVersion = 1

const (
	flagNodeWeights = 1 << 0
	flagEdgeWeights = 1 << 1
	flagSorted      = 1 << 2
)

// ErrChecksum is returned when a binary section fails its crc check.
var ErrChecksum = errors.New("graphio: section checksum mismatch")

// WriteBinary serializes g into the snappy-compressed binary format. Weight
// sections are dropped when every weight is one.
func WriteBinary(w io.Writer, g graph.Graph) error {
	bw := bufio.NewWriter(w)

	n, m := g.N(), g.M()
	nodes := make([]byte, 0, 4*(int(n)+1))
	edges := make([]byte, 0, 4*int(m))
	var offset graph.EdgeID
	nodes = binary.BigEndian.AppendUint32(nodes, 0)
	for u := graph.NodeID(0); u < n; u++ {
		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			edges = binary.BigEndian.AppendUint32(edges, v)
			return true
		})
		offset += graph.EdgeID(g.Degree(u))
		nodes = binary.BigEndian.AppendUint32(nodes, offset)
	}

	var flags byte
	var nodeWeights, edgeWeights []byte
	unitNodes := true
	for u := graph.NodeID(0); u < n && unitNodes; u++ {
		unitNodes = g.NodeWeight(u) == 1
	}
	if !unitNodes {
		flags |= flagNodeWeights
		nodeWeights = make([]byte, 0, 8*int(n))
		for u := graph.NodeID(0); u < n; u++ {
			nodeWeights = binary.BigEndian.AppendUint64(nodeWeights, uint64(g.NodeWeight(u)))
		}
	}
	unitEdges := true
	for u := graph.NodeID(0); u < n && unitEdges; u++ {
		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			unitEdges = g.EdgeWeight(e) == 1
			return unitEdges
		})
	}
	if !unitEdges {
		flags |= flagEdgeWeights
		edgeWeights = make([]byte, 0, 8*int(m))
		for u := graph.NodeID(0); u < n; u++ {
			g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
				edgeWeights = binary.BigEndian.AppendUint64(edgeWeights, uint64(g.EdgeWeight(e)))
				return true
			})
		}
	}
	if g.Sorted() {
		flags |= flagSorted
	}

	if _, err := bw.Write(binaryMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, uint32(binaryVersion)); err != nil {
		return err
	}
	if err := bw.WriteByte(flags); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, n); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, m); err != nil {
		return err
	}

	for _, section := range [][]byte{nodes, edges, nodeWeights, edgeWeights} {
		if section == nil {
			continue
		}
		if err := writeSection(bw, section); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeSection(w io.Writer, raw []byte) error {
	compressed := snappy.Encode(nil, raw)
	if err := binary.Write(w, binary.BigEndian, uint32(len(raw))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(compressed))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, crc32.ChecksumIEEE(compressed)); err != nil {
		return err
	}
	_, err := w.Write(compressed)
	return err
}

// ReadBinary deserializes a graph written by WriteBinary and validates it.
func ReadBinary(r io.Reader) (*graph.CSRGraph, error) {
	br := bufio.NewReader(r)

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: missing magic", ErrFormat)
	}
	if magic != binaryMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, magic[:])
	}
	var version uint32
	if err := binary.Read(br, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	if version != binaryVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, version)
	}
	flags, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	var n graph.NodeID
	var m graph.EdgeID
	if err := binary.Read(br, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.BigEndian, &m); err != nil {
		return nil, err
	}

	rawNodes, err := readSection(br)
	if err != nil {
		return nil, err
	}
	if len(rawNodes) != 4*(int(n)+1) {
		return nil, fmt.Errorf("%w: offset section has %d bytes for %d nodes", ErrFormat, len(rawNodes), n)
	}
	nodes := make([]graph.EdgeID, n+1)
	for i := range nodes {
		nodes[i] = binary.BigEndian.Uint32(rawNodes[4*i:])
	}
	if nodes[n] != m {
		return nil, fmt.Errorf("%w: offsets end at %d, header announced %d half-edges", ErrFormat, nodes[n], m)
	}

	rawEdges, err := readSection(br)
	if err != nil {
		return nil, err
	}
	if len(rawEdges) != 4*int(m) {
		return nil, fmt.Errorf("%w: edge section has %d bytes for %d half-edges", ErrFormat, len(rawEdges), m)
	}
	edges := make([]graph.NodeID, m)
	for i := range edges {
		edges[i] = binary.BigEndian.Uint32(rawEdges[4*i:])
	}

	var nodeWeights []graph.NodeWeight
	if flags&flagNodeWeights != 0 {
		raw, err := readSection(br)
		if err != nil {
			return nil, err
		}
		if len(raw) != 8*int(n) {
			return nil, fmt.Errorf("%w: node weight section has %d bytes", ErrFormat, len(raw))
		}
		nodeWeights = make([]graph.NodeWeight, n)
		for i := range nodeWeights {
			nodeWeights[i] = graph.NodeWeight(binary.BigEndian.Uint64(raw[8*i:]))
		}
	}

	var edgeWeights []graph.EdgeWeight
	if flags&flagEdgeWeights != 0 {
		raw, err := readSection(br)
		if err != nil {
			return nil, err
		}
		if len(raw) != 8*int(m) {
			return nil, fmt.Errorf("%w: edge weight section has %d bytes", ErrFormat, len(raw))
		}
		edgeWeights = make([]graph.EdgeWeight, m)
		for i := range edgeWeights {
			edgeWeights[i] = graph.EdgeWeight(binary.BigEndian.Uint64(raw[8*i:]))
		}
	}

	g := graph.NewCSRGraph(nodes, edges, nodeWeights, edgeWeights, flags&flagSorted != 0)
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

func readSection(r io.Reader) ([]byte, error) {
	var rawLen, compressedLen, checksum uint32
	if err := binary.Read(r, binary.BigEndian, &rawLen); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &compressedLen); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &checksum); err != nil {
		return nil, err
	}
	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}
	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, ErrChecksum
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(raw) != int(rawLen) {
		return nil, fmt.Errorf("%w: section decodes to %d bytes, framed as %d", ErrFormat, len(raw), rawLen)
	}
	return raw, nil
}
