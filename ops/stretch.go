package ops

import (
	"sync/atomic"

	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// StretchPred reports whether an edge should have a vertex interposed
// on it.
type StretchPred func(n *graph.Node, e graph.Edge) (bool, error)

// Stretcher is stretch's callback: given a matching edge, it asserts the
// interposed (label-in, vertex, label-out) triple via ctx.Stretch, or
// leaves ctx.Interposed nil to decline stretching this edge after all.
type Stretcher func(ctx *Context, n *graph.Node, e graph.Edge) error

// StretchWorker runs one pass of stretch (§4.10): every reachable
// node's outgoing edges matching pred are replaced with an edge to a
// freshly materialised interposed node, which in turn points at the
// original terminus. changed is bumped once per edge actually
// stretched, for StretchToFixpoint's iteration.
func StretchWorker(r *router.Router, self int, pred StretchPred, stretcher Stretcher, changed *int64) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			kept := make([]graph.Edge, 0, len(n.EdgesOut))
			for _, e := range n.EdgesOut {
				match, err := pred(n, e)
				if err != nil {
					return err
				}
				if !match {
					kept = append(kept, e)
					continue
				}
				ctx := NewContext(StretchContext)
				if err := stretcher(ctx, n, e); err != nil {
					return err
				}
				if ctx.Interposed == nil {
					kept = append(kept, e)
					continue
				}
				mid := &graph.Node{
					Vertex:   ctx.Interposed.Vertex,
					EdgesOut: []graph.Edge{{Label: ctx.Interposed.LabelOut, Remote: e.Remote}},
				}
				r.Ports[self].QueueCreated(mid)
				kept = append(kept, graph.Edge{Label: ctx.Interposed.LabelIn, Remote: mid})
				atomic.AddInt64(changed, 1)
			}
			n.Lock()
			n.EdgesOut = kept
			n.Unlock()
			return nil
		},
	})
}
