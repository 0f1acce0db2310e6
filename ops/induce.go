package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
	"github.com/flowgraph/dagflow/scatter"
)

// InductionFold computes a node's accumulator from its own vertex and
// the already-settled accumulators of its prerequisite-edge termini
// (the nodes on the opposite side of the traversal direction), per
// spec.md §4.6 "Induction".
type InductionFold func(vertex graph.Vertex, adjacent []any) (any, error)

// InduceParams configures one induction pass. A prior reachability pass
// over the same router (same ports) must have already populated each
// port's reachable set — induction's visitability test depends on it.
type InduceParams struct {
	Dir  reach.Direction
	Fold InductionFold
}

// InduceWorker runs one worker's share of a constrained-order induction
// pass. A node dequeued before all its prerequisites are settled is
// re-enqueued to this worker's deferrals, where packet circulation
// exposes it to the rest of the pool so progress keeps being made as
// peers finish their own prerequisite nodes. Pool-wide discovery always
// walks reach.Explore (outgoing edges) so a Backward pass still covers
// every node even on a half-duplex graph; only readiness
// (reach.Visitable) and the fold's adjacency (gatherAccumulators) read
// params.Dir.
func InduceWorker(r *router.Router, self int, params *InduceParams) any {
	p := r.Ports[self]
	pod := packet.NewPod(r.Lanes(), self)
	owner := reach.OwnerOf(r.Sig, r.Lanes())
	explored := make(map[*graph.Node]struct{})

	for {
		pkts, dismissed := scatter.Recv(r, self, p, pod)
		if dismissed {
			return nil
		}
		for _, pkt := range pkts {
			if scatter.Sample(r) {
				continue
			}
			n, _ := pkt.Payload.(*graph.Node)
			if n == nil || p.Visited(n) {
				continue
			}
			if _, seen := explored[n]; !seen {
				explored[n] = struct{}{}
				ScatterNodes(r, pod, reach.Explore(n))
			}
			if !reach.Visitable(n, params.Dir, r.Ports, owner) {
				pod.Defer(pkt)
				continue
			}

			adjacent := gatherAccumulators(n, params.Dir)
			val, err := params.Fold(n.Vertex, adjacent)
			if err != nil {
				r.Fail(err)
				r.FireInternal()
				continue
			}
			n.Lock()
			n.Scratch = val
			n.Unlock()
			p.MarkVisited(n)
		}
	}
}

func gatherAccumulators(n *graph.Node, dir reach.Direction) []any {
	edges := reach.Prerequisites(n, dir)
	out := make([]any, 0, len(edges))
	for _, e := range edges {
		m := e.Remote
		m.Lock()
		out = append(out, m.Scratch)
		m.Unlock()
	}
	return out
}

// FreeAccumulatorsWorker clears every reachable node's Scratch cell, the
// second pass spec.md §4.6 describes after the base register's
// accumulator has been read out by the caller.
func FreeAccumulatorsWorker(r *router.Router, self int) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			n.Lock()
			n.Scratch = nil
			n.Unlock()
			return nil
		},
	})
}
