package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// ReachabilityWorker runs one worker's share of a reachability pass
// (§4.11): every node the pool discovers from the traversal's seed(s) —
// always via reach.Explore, a graph's own nodes-reachable-via-outgoing
// -edges invariant, independent of dir — is marked into its owning
// port's reachable set. dir is not read here; it is recorded by the
// caller so a subsequent constrained-order pass over the same router
// knows which zone (forward or backward) to read Prerequisites against.
func ReachabilityWorker(r *router.Router, self int, dir reach.Direction) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: dir,
		Visit: func(self int, n *graph.Node) error {
			r.Ports[self].MarkReachable(n)
			return nil
		},
	})
}
