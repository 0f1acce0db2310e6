// Package graph implements the engine's directed-graph data model: nodes
// owned by exactly one graph, edges between them, and the destructor
// contract that governs ownership of client vertex/label values.
//
// Node identity is a plain Go pointer rather than an arena index: unlike
// the systems language DESIGN NOTES in the spec this replaces, Go's
// garbage collector already removes the use-after-free hazard that the
// arena-of-indices suggestion was guarding against, so a direct pointer
// graph (the same choice the teacher's own pgraph package makes with
// map[*Vertex]map[*Vertex]*Edge) is the idiomatic fit here.
package graph

import "sync"

// Edge is a directed connection out of a Node, labelled with a
// client-owned value and pointing at its terminus Node. Mid-build, before
// a terminus vertex has become a Node, operations keep the candidate
// vertex in a separate ConnectedEdge value (see package ops) rather than
// overloading this struct with a nilable union field.
type Edge struct {
	Label  Label
	Remote *Node
}

// Node is exclusively owned by one Graph. EdgesIn is only populated
// during full-duplex phases (see Graph.Duplex); callers must not assume
// it is consistent otherwise. Scratch is a phase-specific cell reused by
// different operations (a mark, an accumulator, a vertex property, an
// equivalence class, ...); only one interpretation is valid during any
// one traversal, and Scratch must be read/written through the Lock/Unlock
// pair below whenever a peer worker (not the node's owner for this
// phase) might be touching it concurrently.
type Node struct {
	Vertex   Vertex
	EdgesOut []Edge
	EdgesIn  []Edge

	Scratch any

	mu           sync.Mutex
	seenCarriers []seenCarrier

	next, prev *Node // doubly-linked list within the owning graph
}

// seenCarrier is one entry of a node's incident-label history, bucketed
// by the label's hash so SawCarrier only has to compare labels that
// already collide on that hash.
type seenCarrier struct {
	hash  uint64
	label Label
}

// Lock guards Scratch and EdgesIn against concurrent access from a peer
// worker (for example duplex's "append (label, sender) to receiver's
// edges_in", invoked by whichever worker owns the sender, not the
// receiver).
func (n *Node) Lock()   { n.mu.Lock() }
func (n *Node) Unlock() { n.mu.Unlock() }

// Graph is a directed graph of nodes, each reachable from Base via
// outgoing edges (invariant (i) in spec.md §3). Duplex reports whether
// EdgesIn is populated consistently with EdgesOut across every node.
type Graph struct {
	Base *Node

	Sig    Sig
	Duplex bool

	mu         sync.Mutex
	head, tail *Node
	count      int
}

// NewGraph creates an empty graph using sig for vertex/edge ownership.
// An empty graph has a nil Base and zero nodes — callers should treat a
// nil *Graph and an empty *Graph identically (spec.md §8 "Empty graph
// (null)").
func NewGraph(sig Sig) *Graph {
	return &Graph{Sig: sig}
}

// Append adds n to the graph's node list in O(1) and returns n, for use
// by any operation assembling nodes it already allocated (build, cross,
// fabricate, merge, split, ...).
func (g *Graph) Append(n *Node) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	n.prev = g.tail
	n.next = nil
	if g.tail != nil {
		g.tail.next = n
	} else {
		g.head = n
	}
	g.tail = n
	g.count++
	return n
}

// Remove splices n out of the node list in O(1). It does not free n or
// its vertex/labels — that is the destructor pass's job (package ops,
// free.go).
func (g *Graph) Remove(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n.prev != nil {
		n.prev.next = n.next
	} else if g.head == n {
		g.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if g.tail == n {
		g.tail = n.prev
	}
	n.next, n.prev = nil, nil
	g.count--
}

// NumVertices returns the number of nodes currently in the graph.
func (g *Graph) NumVertices() int {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// NumEdges returns the total number of outgoing edges across all nodes.
func (g *Graph) NumEdges() int {
	if g == nil {
		return 0
	}
	n := 0
	g.Walk(func(node *Node) bool {
		n += len(node.EdgesOut)
		return true
	})
	return n
}

// Walk calls fn once per node in insertion order until fn returns false
// or the list is exhausted. It takes a snapshot-free pass: fn must not
// mutate the list structure (Append/Remove) concurrently with the walk.
func (g *Graph) Walk(fn func(*Node) bool) {
	if g == nil {
		return
	}
	g.mu.Lock()
	n := g.head
	g.mu.Unlock()
	for n != nil {
		next := n.next
		if !fn(n) {
			return
		}
		n = next
	}
}

// Nodes materialises the node list as a slice. Prefer Walk for hot paths.
func (g *Graph) Nodes() []*Node {
	var out []*Node
	g.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// AddEdge appends e to n's outgoing edge list under n's lock: during
// build the worker that resolves e's terminus is often not the worker
// that owns n, so this write is cross-worker by design. It does not
// deduplicate — callers needing that do it before ever constructing e
// (package ops).
func (n *Node) AddEdge(e Edge) {
	n.Lock()
	n.EdgesOut = append(n.EdgesOut, e)
	n.Unlock()
}

// AddBackEdge appends (label, sender) to n's incoming edge list under
// n's lock, since the caller is typically a peer worker that owns sender
// rather than n (§4.5 "full/half duplex").
func (n *Node) AddBackEdge(label Label, sender *Node) {
	n.Lock()
	n.EdgesIn = append(n.EdgesIn, Edge{Label: label, Remote: sender})
	n.Unlock()
}

// SawCarrier reports whether label has already been recorded as reaching
// n on some earlier collision, recording it if not — the "seen_carriers
// multiset" of spec.md §3/§4.4 step 3, scoped to the node rather than the
// packet that happened to collide with it: a fresh packet is allocated
// per incoming edge (see ops.dispatchConnected), so only node-scoped
// history actually suppresses a repeat subconnector expansion. A nil
// LabelHash/LabelEqual (no label equality supplied) disables the guard
// entirely, matching DedupeConnected's own fallback.
func (n *Node) SawCarrier(sig Sig, label Label) bool {
	if sig.LabelHash == nil || sig.LabelEqual == nil {
		return false
	}
	h := sig.LabelHash(label)
	n.Lock()
	defer n.Unlock()
	for _, c := range n.seenCarriers {
		if c.hash == h && sig.LabelEqual(c.label, label) {
			return true
		}
	}
	n.seenCarriers = append(n.seenCarriers, seenCarrier{hash: h, label: label})
	return false
}

// Destroy invokes the graph's destructor pair on n's vertex and on every
// outgoing edge's label, exactly once. It does not unlink n from the
// graph — callers do that first via Remove, or rely on the graph being
// discarded wholesale.
func (g *Graph) Destroy(n *Node) {
	g.Sig.FreeVertex(n.Vertex)
	for _, e := range n.EdgesOut {
		g.Sig.FreeLabel(e.Label)
	}
}
