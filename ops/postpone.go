package ops

import (
	"sync/atomic"

	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// PostponePred reports whether an outgoing edge of n is "postponable":
// a candidate to relocate onto the termini of its stationary siblings
// rather than firing directly from n.
type PostponePred func(n *graph.Node, e graph.Edge) (bool, error)

// PostponeWorker runs one pass of postpone (§4.10): a reachable node's
// outgoing edges are split into the ones pred matches ("moving") and
// the rest ("stationary"); n keeps only the stationary edges, and each
// moving edge is recreated on every stationary sibling's terminus
// instead. A node with no stationary siblings postpones nothing — its
// moving edges have no sibling terminus to relocate onto, so they stay
// put. changed is bumped once per edge actually relocated, for
// PostponeToFixpoint's iteration.
func PostponeWorker(r *router.Router, self int, pred PostponePred, changed *int64) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			var moving, stationary []graph.Edge
			for _, e := range n.EdgesOut {
				match, err := pred(n, e)
				if err != nil {
					return err
				}
				if match {
					moving = append(moving, e)
				} else {
					stationary = append(stationary, e)
				}
			}
			if len(moving) == 0 || len(stationary) == 0 {
				return nil
			}
			n.Lock()
			n.EdgesOut = stationary
			n.Unlock()
			for _, s := range stationary {
				dest := s.Remote
				dest.Lock()
				for _, m := range moving {
					dest.EdgesOut = append(dest.EdgesOut, graph.Edge{Label: m.Label, Remote: m.Remote})
				}
				dest.Unlock()
			}
			atomic.AddInt64(changed, int64(len(moving)))
			return nil
		},
	})
}
