package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
	"github.com/flowgraph/dagflow/scatter"
)

// Visitor is invoked once per unseen reachable node during a generic
// traversal (§4.5). Returning an error fails the job with that error.
type Visitor func(self int, n *graph.Node) error

// TraverseParams configures a generic scatter/gather traversal: visit
// every node reachable from the seed exactly once, per worker. Pool-wide
// discovery always walks reach.Explore (outgoing edges) — a graph's own
// build invariant guarantees that covers every node from the seed — so
// Dir no longer steers the scatter itself; it is kept on the struct for
// callers that need to record which zone a pass was run for (e.g.
// ReachabilityWorker, whose dir selects the zone a later constrained
// -order pass will read Prerequisites against).
type TraverseParams struct {
	Dir   reach.Direction
	Visit Visitor
}

// TraverseWorker runs one worker's share of a generic node traversal to
// completion. Operations needing per-worker accumulation close over
// their own state from within Visit; TraverseWorker itself returns nil.
func TraverseWorker(r *router.Router, self int, params *TraverseParams) any {
	p := r.Ports[self]
	pod := packet.NewPod(r.Lanes(), self)
	seen := map[*graph.Node]struct{}{}

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
			if n == nil {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}

			if err := params.Visit(self, n); err != nil {
				r.Fail(err)
				r.FireInternal()
				continue
			}
			ScatterNodes(r, pod, reach.Explore(n))
		}
	}
}

// ScatterNodes stages a *graph.Node payload packet for each edge's
// terminus, hash-routed to its owning worker — the node-traversal
// counterpart of build's dispatchConnected.
func ScatterNodes(r *router.Router, pod *packet.Pod, edges []graph.Edge) {
	lanes := r.Lanes()
	for _, e := range edges {
		m := e.Remote
		hv := r.Sig.VertexHash(m.Vertex)
		dest := int(hv % uint64(lanes))
		pod.Stage(dest, packet.New(m, hv))
	}
}

// SeedNode places the traversal's starting packet directly into the
// owning port's inbox, per spec.md §4.1 "Initial packets". Callers must
// call this before crew.Launch starts the worker goroutines, so the
// packet is already resident when its owning worker's loop begins —
// otherwise a worker pool that suspends before the seed lands could be
// mistaken for quiescent.
func SeedNode(r *router.Router, n *graph.Node) {
	hv := r.Sig.VertexHash(n.Vertex)
	dest := int(hv % uint64(r.Lanes()))
	r.Ports[dest].Send([]*packet.Packet{packet.Seed(n, hv)})
}

// SeedNodes places several starting packets, one per node, for
// traversals with more than one root (e.g. a filter's "deleted" pass
// re-seeded from every surviving node of the previous pass).
func SeedNodes(r *router.Router, nodes []*graph.Node) {
	for _, n := range nodes {
		SeedNode(r, n)
	}
}

// SeedNodesHashed places one starting packet per node, routed by a
// caller-supplied hash rather than the vertex hash — used by partition's
// second pass, which must bin nodes by property rather than by vertex so
// that every node sharing a property lands on the same worker.
func SeedNodesHashed(r *router.Router, nodes []*graph.Node, hash func(*graph.Node) uint64) {
	lanes := r.Lanes()
	for _, n := range nodes {
		hv := hash(n)
		dest := int(hv % uint64(lanes))
		r.Ports[dest].Send([]*packet.Packet{packet.Seed(n, hv)})
	}
}
