package dist

import "github.com/dd0wney/cluso-partition/pkg/graph"

// Exchanger moves one round of per-PE message batches. Every participant
// must call Exchange once per round with one outgoing batch per PE, empty
// batches included, and receives one incoming batch per PE.
type Exchanger[M any] interface {
	Exchange(me PEID, out [][]M) [][]M
}

// LocalGroup is the in-process transport: the PEs of one round are
// goroutines of the same process and batches change hands over buffered
// channels. A single mailbox per ordered PE pair keeps consecutive rounds
// from overtaking each other.
type LocalGroup[M any] struct {
	numPEs int
	mail   [][]chan []M
}

// NewLocalGroup creates a transport connecting numPEs in-process PEs.
func NewLocalGroup[M any](numPEs int) *LocalGroup[M] {
	mail := make([][]chan []M, numPEs)
	for to := range mail {
		mail[to] = make([]chan []M, numPEs)
		for from := range mail[to] {
			mail[to][from] = make(chan []M, 1)
		}
	}
	return &LocalGroup[M]{numPEs: numPEs, mail: mail}
}

// NumPEs returns the size of the group.
func (g *LocalGroup[M]) NumPEs() int {
	return g.numPEs
}

// Exchange delivers out[to] to every PE and blocks until every batch
// addressed to me has arrived.
func (g *LocalGroup[M]) Exchange(me PEID, out [][]M) [][]M {
	for to := 0; to < g.numPEs; to++ {
		g.mail[to][me] <- out[to]
	}
	in := make([][]M, g.numPEs)
	for from := 0; from < g.numPEs; from++ {
		in[from] = <-g.mail[me][from]
	}
	return in
}

// SparseAllToAll runs one exchange round. build emits messages to their
// destination PEs; recv is invoked once per PE that sent anything, in PE
// order. Self-addressed messages loop back through the same path.
func SparseAllToAll[M any](x Exchanger[M], numPEs int, me PEID, build func(emit func(to PEID, msg M)), recv func(from PEID, msgs []M)) {
	out := make([][]M, numPEs)
	build(func(to PEID, msg M) {
		out[to] = append(out[to], msg)
	})
	in := x.Exchange(me, out)
	for from, msgs := range in {
		if len(msgs) > 0 {
			recv(PEID(from), msgs)
		}
	}
}

// BlockUpdate announces the new block of one node, numbered in the sender's
// local order.
type BlockUpdate struct {
	Node  graph.NodeID
	Block graph.BlockID
}

// SyncGhostBlocks pushes the current blocks of the selected owned nodes to
// their interface peers and applies every incoming update to the local ghost
// copy. selected enumerates the nodes to announce together with their peer
// PEs; block reads the node's block; apply writes an updated block to a
// local node id.
func SyncGhostBlocks(
	x Exchanger[BlockUpdate],
	t *GhostTable,
	selected func(emit func(u graph.NodeID, pe PEID)),
	block func(u graph.NodeID) graph.BlockID,
	apply func(lnode graph.NodeID, b graph.BlockID),
) {
	SparseAllToAll(x, t.dist.NumPEs(), t.me,
		func(emit func(to PEID, msg BlockUpdate)) {
			selected(func(u graph.NodeID, pe PEID) {
				emit(pe, BlockUpdate{Node: u, Block: block(u)})
			})
		},
		func(from PEID, msgs []BlockUpdate) {
			for _, msg := range msgs {
				apply(t.MapForeignNode(msg.Node, from), msg.Block)
			}
		})
}
