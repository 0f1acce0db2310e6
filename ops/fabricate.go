package ops

import (
	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/router"
	"github.com/flowgraph/dagflow/scatter"
)

// Fabricator transforms a source graph's vertices and edge labels into
// a fresh, isomorphic copy (§4.10 "Fabricate"). The identity
// transformation (Vertex/Label both return their input unchanged) is
// the round-trip case spec.md §8 tests against.
type Fabricator struct {
	Vertex func(v graph.Vertex) (graph.Vertex, error)
	Label  func(l graph.Label) (graph.Label, error)
}

// FabricateParams is the parameter block a fabricate job's router
// carries. Seed is the source graph's base node.
type FabricateParams struct {
	Fabricator Fabricator
	Seed       *graph.Node
	SourceSig  graph.Sig // used to route by the source vertex's hash
}

// FabricateResult is one worker's contribution to a finished fabricate
// job: its output queue of copied nodes, plus the copy of the source
// seed if this worker happened to be the one that created it.
type FabricateResult struct {
	Queue []*graph.Node
	Base  *graph.Node
}

// FabricateWorker runs one worker's share of a fabricate job, copying
// every node reachable from Seed (in the source graph) into a fresh
// node with a transformed vertex.
func FabricateWorker(r *router.Router, self int, params *FabricateParams) any {
	p := r.Ports[self]
	pod := packet.NewPod(r.Lanes(), self)
	table := map[*graph.Node]*graph.Node{} // source node -> copy
	result := &FabricateResult{}

	for {
		pkts, dismissed := scatter.Recv(r, self, p, pod)
		if dismissed {
			return *result
		}
		for _, pkt := range pkts {
			if scatter.Sample(r) {
				continue
			}
			src, _ := pkt.Payload.(*graph.Node)
			if src == nil {
				continue
			}
			if err := fabricateStep(r, pod, params, table, result, pkt, src); err != nil {
				r.Fail(err)
				r.FireInternal()
			}
		}
	}
}

func fabricateStep(r *router.Router, pod *packet.Pod, params *FabricateParams, table map[*graph.Node]*graph.Node, result *FabricateResult, pkt *packet.Packet, src *graph.Node) error {
	if existing, ok := table[src]; ok {
		if pkt.Sender != nil {
			pkt.Sender.AddEdge(graph.Edge{Label: pkt.Carrier, Remote: existing})
		}
		return nil
	}

	vertex, err := params.Fabricator.Vertex(src.Vertex)
	if err != nil {
		return codes.Wrap(codes.ContradictoryConnector, err)
	}
	n := &graph.Node{Vertex: vertex}
	table[src] = n
	result.Queue = append(result.Queue, n)
	if src == params.Seed {
		result.Base = n
	}
	if pkt.Sender != nil {
		pkt.Sender.AddEdge(graph.Edge{Label: pkt.Carrier, Remote: n})
	}

	for _, e := range src.EdgesOut {
		label, err := params.Fabricator.Label(e.Label)
		if err != nil {
			return codes.Wrap(codes.ContradictoryConnector, err)
		}
		hv := params.SourceSig.VertexHash(e.Remote.Vertex)
		dest := int(hv % uint64(r.Lanes()))
		cpkt := packet.New(e.Remote, hv)
		cpkt.Sender = n
		cpkt.Carrier = label
		pod.Stage(dest, cpkt)
	}
	return nil
}

// SeedFabricate places the source seed node directly into its owning
// port's inbox, routed by the source graph's own vertex hash so every
// worker agrees on node ownership throughout the copy.
func SeedFabricate(r *router.Router, sig graph.Sig, seed *graph.Node) {
	hv := sig.VertexHash(seed.Vertex)
	dest := int(hv % uint64(r.Lanes()))
	r.Ports[dest].Send([]*packet.Packet{packet.Seed(seed, hv)})
}

// AssembleFabricated concatenates every worker's output queue and sets
// Base to the copy of params.Seed.
func AssembleFabricated(sig graph.Sig, results []any) *graph.Graph {
	g := graph.NewGraph(sig)
	for _, res := range results {
		fr, _ := res.(FabricateResult)
		for _, n := range fr.Queue {
			g.Append(n)
		}
		if fr.Base != nil {
			g.Base = fr.Base
		}
	}
	return g
}
