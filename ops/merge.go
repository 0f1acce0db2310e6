package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/internal/disjoint"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// VertexKernel folds a class's member vertices into the single vertex
// the class's representative node will carry.
type VertexKernel func(acc, v graph.Vertex) (graph.Vertex, error)

// EdgeKernel folds duplicate outgoing-edge labels bound for the same
// destination class into a single representative label.
type EdgeKernel func(acc, l graph.Label) (graph.Label, error)

// Kernel bundles merge's vertex and edge folds, per the glossary's
// "paired vertex-prop and edge-fold consumed by mutation/merge/filter".
type Kernel struct {
	Vertex VertexKernel
	Edge   EdgeKernel
}

// ClusterClasses is merge's vertex-clustering pass (§4.9 pass 2): given
// the class assignment a classifier pass produced, pick one
// representative node per class (whichever member the iteration over
// the classOf map reaches first, so the choice is arbitrary) and fold
// every class member's vertex into it via kernel.Vertex. It is a
// sequential reduction per class, but classes are independent of one
// another — callers processing many classes on a graph with a large
// class count can still parallelise by sharding classOf across
// goroutines; this helper does the per-class fold.
func ClusterClasses(kernel Kernel, classOf map[*graph.Node]*disjoint.Class[any]) (map[*disjoint.Class[any]]*graph.Node, error) {
	reps := map[*disjoint.Class[any]]*graph.Node{}
	for n, cls := range classOf {
		root := cls.Find()
		rep, ok := reps[root]
		if !ok {
			reps[root] = n
			continue
		}
		merged, err := kernel.Vertex(rep.Vertex, n.Vertex)
		if err != nil {
			return nil, err
		}
		rep.Vertex = merged
	}
	return reps, nil
}

// FuseEdges is merge's edge-fusing pass (§4.9 pass 3), run sequentially
// by the caller: for each representative node, marshal its class's
// combined outgoing edges by destination class, fold same-destination
// labels with kernel.Edge, and rewrite EdgesOut to the deduplicated,
// fused result. classOf maps every original node (including
// non-representatives) to its class, so a representative's fused edge
// set must be built from every member's original EdgesOut, not just its
// own.
func FuseEdges(kernel Kernel, classOf map[*graph.Node]*disjoint.Class[any], reps map[*disjoint.Class[any]]*graph.Node, members map[*disjoint.Class[any]][]*graph.Node) error {
	classOfNode := func(n *graph.Node) *disjoint.Class[any] {
		return classOf[n].Find()
	}
	for root, rep := range reps {
		type bucket struct {
			label graph.Label
			dest  *graph.Node
		}
		buckets := map[*disjoint.Class[any]]bucket{}
		for _, member := range members[root] {
			for _, e := range member.EdgesOut {
				destClass := classOfNode(e.Remote)
				destRep := reps[destClass]
				if b, ok := buckets[destClass]; ok {
					fused, err := kernel.Edge(b.label, e.Label)
					if err != nil {
						return err
					}
					buckets[destClass] = bucket{label: fused, dest: destRep}
					continue
				}
				buckets[destClass] = bucket{label: e.Label, dest: destRep}
			}
		}
		out := make([]graph.Edge, 0, len(buckets))
		for _, b := range buckets {
			out = append(out, graph.Edge{Label: b.label, Remote: b.dest})
		}
		rep.Lock()
		rep.EdgesOut = out
		rep.Unlock()
	}
	return nil
}

// GroupMembers indexes classOf by class root, the bucketing FuseEdges
// needs to find every original member of a class (representative or
// not) from its root.
func GroupMembers(classOf map[*graph.Node]*disjoint.Class[any]) map[*disjoint.Class[any]][]*graph.Node {
	out := map[*disjoint.Class[any]][]*graph.Node{}
	for n, cls := range classOf {
		root := cls.Find()
		out[root] = append(out[root], n)
	}
	return out
}

// ReachabilityFromWorker reruns a plain reachability pass from seed
// (merge and filter's shared final prune precondition) — a thin alias
// kept here so callers in package engine do not need to import reach
// just to name the forward direction.
func ReachabilityFromWorker(r *router.Router, self int) any {
	return ReachabilityWorker(r, self, reach.Forward)
}
