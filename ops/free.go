package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// poller avoids importing package port just for its Deletions method.
type poller interface {
	Deletions() []*graph.Node
}

// FreeWorker traverses g from its base node, transferring each visited
// node into this port's deletions list; the coordinator frees every
// port's list (invoking the graph's destructor pair) once the whole
// crew has reached quiescence, per spec.md §4.12 "Reclamation" /
// "Graph free (parallel)".
func FreeWorker(r *router.Router, self int) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			r.Ports[self].QueueDeletion(n)
			return nil
		},
	})
}

// ReclaimDeletions invokes g's destructor pair over every node queued by
// FreeWorker across the whole crew. Call this only after the crew has
// returned (quiescence reached, so no peer can still be reading a
// node's edges).
func ReclaimDeletions(g *graph.Graph, ports []poller) {
	for _, p := range ports {
		for _, n := range p.Deletions() {
			g.Destroy(n)
		}
	}
}

// FreeSync walks g's node list directly and destroys every node, for
// the synchronous (single-threaded) reclamation path and as the
// fallback when a parallel free itself fails (spec.md §7 "On error
// paths traversals fall back to sequential reclamation").
func FreeSync(g *graph.Graph) {
	for _, n := range g.Nodes() {
		g.Destroy(n)
	}
}
