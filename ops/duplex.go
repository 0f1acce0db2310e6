package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// ToFullDuplexWorker walks every node's outgoing edges and appends
// (label, sender) to each terminus's incoming edge list, per spec.md
// §4.5 "Full/half duplex". The visiting worker is usually not the
// terminus's owner, so AddBackEdge takes the terminus's own lock.
func ToFullDuplexWorker(r *router.Router, self int) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			for _, e := range n.EdgesOut {
				e.Remote.AddBackEdge(e.Label, n)
			}
			return nil
		},
	})
}

// ToHalfDuplexWorker clears EdgesIn across every reachable node,
// reverting a graph to half-duplex.
func ToHalfDuplexWorker(r *router.Router, self int) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			n.Lock()
			n.EdgesIn = nil
			n.Unlock()
			return nil
		},
	})
}

// SetDuplex flips g.Duplex to match the pass that was just run.
func SetDuplex(g *graph.Graph, duplex bool) {
	g.Duplex = duplex
}
