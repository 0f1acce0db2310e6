// Package reach implements the shared readiness checks constrained-order
// traversals build on: node ownership by hash, the reachable/visited
// bookkeeping a prior pass populates, and the visitable/retirable tests
// that decide whether a node may be stepped on yet, per spec.md §4.7
// ("Induction") and the worker-loop notes around line 168.
package reach

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/port"
)

// Direction names which edge set an operation's "zone" scatters along.
// Forward traversals (e.g. a forward fold) scatter along outgoing edges
// and treat a node's predecessors (its EdgesIn termini) as prerequisites;
// Backward traversals do the reverse.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Advance returns the edges a worker scatters packets along for dir.
func Advance(n *graph.Node, dir Direction) []graph.Edge {
	if dir == Forward {
		return n.EdgesOut
	}
	return n.EdgesIn
}

// Explore returns the edges a worker uses to discover the rest of the
// graph, independent of any operation's zone direction. A graph's own
// build invariant (spec.md §3: "every node reachable from base_node via
// outgoing edges appears in nodes") means EdgesOut always covers the
// whole graph from the seed, while EdgesIn is only populated once a
// graph has been put into full-duplex (engine.ToFullDuplex); a backward
// zone's pool-wide discovery pass must not depend on that. Pass/fold
// ordering still reads Prerequisites(dir) — only discovery is pinned
// forward.
func Explore(n *graph.Node) []graph.Edge {
	return n.EdgesOut
}

// Prerequisites returns the edges whose termini must be settled before n
// may be visited under dir — the edge set opposite to Advance.
func Prerequisites(n *graph.Node, dir Direction) []graph.Edge {
	if dir == Forward {
		return n.EdgesIn
	}
	return n.EdgesOut
}

// Owner assigns node ownership for a pass: hash(vertex) mod lanes. Every
// operation that needs to ask "which worker's sets govern this node"
// uses this same rule, so reachable/visited bookkeeping populated by one
// pass is found by exactly the worker that looks for it in the next.
func Owner(sig graph.Sig, n *graph.Node, lanes int) int {
	if lanes <= 0 {
		return 0
	}
	if sig.VertexHash == nil {
		return 0
	}
	return int(sig.VertexHash(n.Vertex) % uint64(lanes))
}

// OwnerOf builds an owner-lookup closure bound to a fixed sig and lane
// count, the form most call sites want to pass around.
func OwnerOf(sig graph.Sig, lanes int) func(*graph.Node) int {
	return func(n *graph.Node) int {
		return Owner(sig, n, lanes)
	}
}

// Visitable reports whether n may be visited now under dir: every
// prerequisite terminus must be either already visited by its owning
// port, or absent from its owning port's reachable set entirely (i.e.
// provably outside the traversal, which can never block it). A
// prerequisite owned by a port that has been disabled by a local error
// makes n permanently unvisitable, aborting the traversal from this
// node's perspective.
func Visitable(n *graph.Node, dir Direction, ports []*port.Port, owner func(*graph.Node) int) bool {
	for _, e := range Prerequisites(n, dir) {
		m := e.Remote
		op := ports[owner(m)]
		if op.Disabled() {
			return false
		}
		if op.Visited(m) {
			continue
		}
		if op.Reachable(m) {
			return false
		}
	}
	return true
}

// Retirable reports whether n's resources (its node, its per-node
// state) may be reclaimed now: true once every node reachable via
// Advance(n, dir) — n's successors in the traversal's sense — has
// already been visited or is outside the reachable set, mirroring
// Visitable but looking forward instead of at prerequisites. Operations
// freeing or pruning nodes after a traversal use this to avoid
// releasing a node a peer worker might still need to read.
func Retirable(n *graph.Node, dir Direction, ports []*port.Port, owner func(*graph.Node) int) bool {
	for _, e := range Advance(n, dir) {
		m := e.Remote
		op := ports[owner(m)]
		if op.Disabled() {
			continue
		}
		if op.Visited(m) {
			continue
		}
		if op.Reachable(m) {
			return false
		}
	}
	return true
}
