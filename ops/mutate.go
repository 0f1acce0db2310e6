package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
	"github.com/flowgraph/dagflow/scatter"
)

// MutateOrder selects how mutate sequences a graph's rewrite, per
// spec.md §4.10 "Mutate".
type MutateOrder int

const (
	// Unconstrained applies the kernel to every reachable node in
	// whatever order each worker happens to dequeue it. A kernel run
	// this way must not read any adjacent node's vertex — nothing
	// guarantees a neighbour has been rewritten, or even visited, yet.
	Unconstrained MutateOrder = iota
	// LocalFirst rewrites a node only after every prerequisite along
	// the forward direction (its predecessors) has already settled,
	// the same readiness discipline induction uses.
	LocalFirst
	// RemoteFirst is LocalFirst with the traversal direction reversed:
	// a node settles only after its successors have.
	RemoteFirst
)

// VertexRewrite computes a node's replacement vertex. Under
// Unconstrained it receives adjacent == nil; under LocalFirst /
// RemoteFirst it receives the already-settled vertices of the node's
// prerequisite-edge termini, identically to InductionFold.
type VertexRewrite func(vertex graph.Vertex, adjacent []any) (graph.Vertex, error)

// EdgeRewrite computes an edge's replacement label, or reports keep ==
// false to drop the edge outright. It is applied after VertexRewrite,
// uniformly across all three orders, since an edge's own label never
// depends on any other node's settled state.
type EdgeRewrite func(n *graph.Node, e graph.Edge) (label graph.Label, keep bool, err error)

// MutateKernel bundles mutate's vertex and edge rewrites. Either may be
// nil to leave that half of the graph untouched.
type MutateKernel struct {
	Vertex VertexRewrite
	Edge   EdgeRewrite
}

func applyEdgeRewrite(n *graph.Node, rewrite EdgeRewrite) error {
	if rewrite == nil {
		return nil
	}
	n.Lock()
	edges := append([]graph.Edge(nil), n.EdgesOut...)
	n.Unlock()

	out := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		label, keep, err := rewrite(n, e)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		out = append(out, graph.Edge{Label: label, Remote: e.Remote})
	}
	n.Lock()
	n.EdgesOut = out
	n.Unlock()
	return nil
}

// MutateUnorderedWorker runs one pass of mutate under Unconstrained
// order: a plain traversal, rewriting each reachable node's vertex
// (with no adjacent state) and then its edges.
func MutateUnorderedWorker(r *router.Router, self int, kernel MutateKernel) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			if kernel.Vertex != nil {
				v, err := kernel.Vertex(n.Vertex, nil)
				if err != nil {
					return err
				}
				n.Lock()
				n.Vertex = v
				n.Unlock()
			}
			return applyEdgeRewrite(n, kernel.Edge)
		},
	})
}

// MutateOrderedWorker runs one worker's share of a constrained-order
// mutate pass (LocalFirst or RemoteFirst), using the same
// deferred-retry readiness discipline as InduceWorker: a node dequeued
// before all its prerequisites have settled is re-enqueued to this
// worker's deferrals until circulation exposes it again. A prior
// reachability pass over the same router must already have populated
// each port's reachable set. As in InduceWorker, pool-wide discovery
// always walks reach.Explore regardless of dir; only readiness
// (reach.Visitable) and the settled-vertex adjacency
// (gatherSettledVertices) read dir.
func MutateOrderedWorker(r *router.Router, self int, dir reach.Direction, kernel MutateKernel) any {
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
			if !reach.Visitable(n, dir, r.Ports, owner) {
				pod.Defer(pkt)
				continue
			}

			if kernel.Vertex != nil {
				adjacent := gatherSettledVertices(n, dir)
				v, err := kernel.Vertex(n.Vertex, adjacent)
				if err != nil {
					r.Fail(err)
					r.FireInternal()
					continue
				}
				n.Lock()
				n.Vertex = v
				n.Unlock()
			}
			if err := applyEdgeRewrite(n, kernel.Edge); err != nil {
				r.Fail(err)
				r.FireInternal()
				continue
			}
			p.MarkVisited(n)
		}
	}
}

func gatherSettledVertices(n *graph.Node, dir reach.Direction) []any {
	edges := reach.Prerequisites(n, dir)
	out := make([]any, 0, len(edges))
	for _, e := range edges {
		m := e.Remote
		m.Lock()
		out = append(out, m.Vertex)
		m.Unlock()
	}
	return out
}
