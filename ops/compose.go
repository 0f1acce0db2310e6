package ops

import (
	"sync/atomic"

	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// ComposePred is compose's quaternary predicate: given a node n, one of
// its outgoing edges e1 to m, and one of m's outgoing edges e2 to k, it
// reports whether a bypass edge n->k should be created.
type ComposePred func(n *graph.Node, e1 graph.Edge, m *graph.Node, e2 graph.Edge) (bool, error)

// ComposeLabel computes the bypass edge's label from the two edges it
// composes.
type ComposeLabel func(e1, e2 graph.Edge) (graph.Label, error)

// ComposeSpec bundles compose's predicate, label fold, and whether the
// launching edges (n->m) that produced a bypass are deleted afterward.
type ComposeSpec struct {
	Pred            ComposePred
	Label           ComposeLabel
	DeleteLaunching bool
}

// ComposeWorker runs one pass of compose (§4.10). changed is bumped
// once per bypass edge created, for ComposeToFixpoint's iteration.
func ComposeWorker(r *router.Router, self int, spec ComposeSpec, changed *int64) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			var bypass []graph.Edge
			toDelete := map[int]bool{}
			for i, e1 := range n.EdgesOut {
				m := e1.Remote
				for _, e2 := range m.EdgesOut {
					ok, err := spec.Pred(n, e1, m, e2)
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
					label, err := spec.Label(e1, e2)
					if err != nil {
						return err
					}
					bypass = append(bypass, graph.Edge{Label: label, Remote: e2.Remote})
					atomic.AddInt64(changed, 1)
					if spec.DeleteLaunching {
						toDelete[i] = true
					}
				}
			}
			if len(bypass) == 0 && len(toDelete) == 0 {
				return nil
			}
			n.Lock()
			out := make([]graph.Edge, 0, len(n.EdgesOut)+len(bypass))
			for i, e := range n.EdgesOut {
				if toDelete[i] {
					continue
				}
				out = append(out, e)
			}
			n.EdgesOut = append(out, bypass...)
			n.Unlock()
			return nil
		},
	})
}
