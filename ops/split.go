package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// SplitSpec bundles split's predicate and its four routing functions:
// AnaVertex/CataVertex transform the original vertex into the two
// copies' vertices; OutAna decides which outgoing edges the ana
// ("anabolic") copy keeps versus the cata ("catabolic") copy (which
// keeps the rest, reusing the original node in place); InAna decides
// which incoming edges get redirected to point at the ana copy instead
// of the original (now cata) node.
type SplitSpec struct {
	Pred       func(n *graph.Node) (bool, error)
	AnaVertex  func(v graph.Vertex) (graph.Vertex, error)
	CataVertex func(v graph.Vertex) (graph.Vertex, error)
	OutAna     func(e graph.Edge) (bool, error)
	InAna      func(e graph.Edge) (bool, error)
}

// SplitWorker runs one pass of split (§4.10). It requires the graph to
// already be full-duplex (EdgesIn populated) so a matching node's
// predecessors can be found and redirected. Only the first
// not-yet-redirected predecessor edge matching (remote == n) is
// rewritten per EdgesIn entry; a predecessor with more than one
// identically-labelled edge into the same node is a degenerate case
// split does not attempt to disambiguate further.
func SplitWorker(r *router.Router, self int, spec SplitSpec) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			match, err := spec.Pred(n)
			if err != nil {
				return err
			}
			if !match {
				return nil
			}

			anaVertex, err := spec.AnaVertex(n.Vertex)
			if err != nil {
				return err
			}
			cataVertex, err := spec.CataVertex(n.Vertex)
			if err != nil {
				return err
			}

			var anaOut, cataOut []graph.Edge
			for _, e := range n.EdgesOut {
				toAna, err := spec.OutAna(e)
				if err != nil {
					return err
				}
				if toAna {
					anaOut = append(anaOut, e)
				} else {
					cataOut = append(cataOut, e)
				}
			}
			ana := &graph.Node{Vertex: anaVertex, EdgesOut: anaOut}
			r.Ports[self].QueueCreated(ana)

			n.Lock()
			n.Vertex = cataVertex
			n.EdgesOut = cataOut
			edgesIn := append([]graph.Edge(nil), n.EdgesIn...)
			n.Unlock()

			for _, e := range edgesIn {
				toAna, err := spec.InAna(e)
				if err != nil {
					return err
				}
				if !toAna {
					continue
				}
				redirectFirstEdge(e.Remote, n, ana)
			}
			return nil
		},
	})
}

// redirectFirstEdge rewrites the first outgoing edge of pred that
// targets oldTarget to instead target newTarget.
func redirectFirstEdge(pred, oldTarget, newTarget *graph.Node) {
	pred.Lock()
	defer pred.Unlock()
	for i := range pred.EdgesOut {
		if pred.EdgesOut[i].Remote == oldTarget {
			pred.EdgesOut[i].Remote = newTarget
			return
		}
	}
}
