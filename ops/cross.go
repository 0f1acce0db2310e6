package ops

import (
	"unsafe"

	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/router"
	"github.com/flowgraph/dagflow/scatter"
)

// Crosser bundles the Cartesian-product callbacks: VertexPred decides
// whether a pair of source nodes materialises a product vertex at all;
// EdgePred decides whether a pair of outgoing edges (one from each
// source node) produces a product edge, per spec.md §4.10's worked
// example ("only aa→bb via the single combination passing e_prod.bpred
// = equal-labels").
type Crosser struct {
	VertexPred func(av, bv graph.Vertex) (bool, error)
	VertexFold func(av, bv graph.Vertex) (graph.Vertex, error)
	EdgePred   func(la, lb graph.Label) (bool, error)
	EdgeFold   func(la, lb graph.Label) (graph.Label, error)
}

// CrossParams is the parameter block a cross job's router carries.
type CrossParams struct {
	Crosser Crosser
	SeedA   *graph.Node
	SeedB   *graph.Node
}

// pair identifies a candidate product node by the two source nodes it
// combines. Since graph.Node pointers are a stable, unique identity
// within a single job, pair can be used directly as a map key — a
// simpler substitute for the original's hash-bucket-then-equality
// collision table (see DESIGN.md).
type pair struct {
	a, b *graph.Node
}

// CrossResult is one worker's contribution to a finished cross job: its
// output queue of product nodes, plus the product node for (SeedA,
// SeedB) if this worker happened to be the one that created it.
type CrossResult struct {
	Queue []*graph.Node
	Base  *graph.Node
}

// CrossWorker runs one worker's share of a cross job to completion.
func CrossWorker(r *router.Router, self int, params *CrossParams) any {
	p := r.Ports[self]
	pod := packet.NewPod(r.Lanes(), self)
	table := map[pair]*graph.Node{}
	seedPair := pair{a: params.SeedA, b: params.SeedB}
	result := &CrossResult{}

	for {
		pkts, dismissed := scatter.Recv(r, self, p, pod)
		if dismissed {
			return *result
		}
		for _, pkt := range pkts {
			if scatter.Sample(r) {
				continue
			}
			pr, _ := pkt.Payload.(pair)
			if err := crossStep(r, pod, params, table, result, pkt, pr, seedPair); err != nil {
				r.Fail(err)
				r.FireInternal()
			}
		}
	}
}

func crossStep(r *router.Router, pod *packet.Pod, params *CrossParams, table map[pair]*graph.Node, result *CrossResult, pkt *packet.Packet, pr, seedPair pair) error {
	if existing, ok := table[pr]; ok {
		if pkt.Sender != nil {
			pkt.Sender.AddEdge(graph.Edge{Label: pkt.Carrier, Remote: existing})
		}
		return nil
	}

	ok, err := params.Crosser.VertexPred(pr.a.Vertex, pr.b.Vertex)
	if err != nil {
		return codes.Wrap(codes.ContradictoryConnector, err)
	}
	if !ok {
		return nil
	}
	vertex, err := params.Crosser.VertexFold(pr.a.Vertex, pr.b.Vertex)
	if err != nil {
		return codes.Wrap(codes.ContradictoryConnector, err)
	}
	n := &graph.Node{Vertex: vertex}
	table[pr] = n
	result.Queue = append(result.Queue, n)
	if pr == seedPair {
		result.Base = n
	}
	if pkt.Sender != nil {
		pkt.Sender.AddEdge(graph.Edge{Label: pkt.Carrier, Remote: n})
	}

	for _, ea := range pr.a.EdgesOut {
		for _, eb := range pr.b.EdgesOut {
			combine, err := params.Crosser.EdgePred(ea.Label, eb.Label)
			if err != nil {
				return codes.Wrap(codes.ContradictoryConnector, err)
			}
			if !combine {
				continue
			}
			label, err := params.Crosser.EdgeFold(ea.Label, eb.Label)
			if err != nil {
				return codes.Wrap(codes.ContradictoryConnector, err)
			}
			child := pair{a: ea.Remote, b: eb.Remote}
			hv := hashPair(child)
			dest := int(hv % uint64(r.Lanes()))
			cpkt := packet.New(child, hv)
			cpkt.Sender = n
			cpkt.Carrier = label
			pod.Stage(dest, cpkt)
		}
	}
	return nil
}

// hashPair combines two node pointer identities into a single routing
// hash by folding their addresses; it need not match any client hash
// since product nodes are routed purely by runtime identity, not by
// vertex equality.
func hashPair(p pair) uint64 {
	ha := uint64(uintptr(unsafe.Pointer(p.a)))
	hb := uint64(uintptr(unsafe.Pointer(p.b)))
	return ha*1099511628211 ^ hb
}

// SeedCross places the initial product-candidate packet (the two seed
// nodes) directly into its owning port's inbox.
func SeedCross(r *router.Router, a, b *graph.Node) {
	pr := pair{a: a, b: b}
	hv := hashPair(pr)
	dest := int(hv % uint64(r.Lanes()))
	r.Ports[dest].Send([]*packet.Packet{packet.Seed(pr, hv)})
}

// AssembleCrossed concatenates every worker's output queue into a new
// product graph and sets Base to whichever worker reported creating
// the (SeedA, SeedB) product node.
func AssembleCrossed(sig graph.Sig, results []any) *graph.Graph {
	g := graph.NewGraph(sig)
	for _, res := range results {
		cr, _ := res.(CrossResult)
		for _, n := range cr.Queue {
			g.Append(n)
		}
		if cr.Base != nil {
			g.Base = cr.Base
		}
	}
	return g
}
