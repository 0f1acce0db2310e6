package ops

import (
	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/router"
	"github.com/flowgraph/dagflow/scatter"
)

// Connector names the outgoing edges of vertex v by calling ctx.Connect
// for each, per spec.md §4.4.
type Connector func(ctx *Context, v graph.Vertex) error

// Subconnector is the incident-label-aware variant of Connector, used
// for the seed (initial=true, incidentLabel=zero value), for every newly
// created node, and to re-expand a node reached again by an unseen label.
type Subconnector func(ctx *Context, initial bool, incidentLabel graph.Label, v graph.Vertex) error

// Builder bundles the callbacks and ownership contract for Build.
type Builder struct {
	Connector    Connector    // used when Subconnector is nil
	Subconnector Subconnector // takes precedence over Connector when set
	Sig          graph.Sig
}

// BuildParams is the parameter block a build job's router carries.
type BuildParams struct {
	Builder Builder
	Seed    graph.Vertex
	Reserve *scatter.PacketReserve
}

func (b *Builder) expand(ctx *Context, initial bool, incidentLabel graph.Label, v graph.Vertex) error {
	if b.Subconnector != nil {
		return b.Subconnector(ctx, initial, incidentLabel, v)
	}
	return b.Connector(ctx, v)
}

// DedupeConnected filters fresh down to the (label, vertex) pairs not
// already present in existing (compared via sig's label/vertex equality)
// and not repeated within fresh itself, freeing the vertex and label of
// every pair it drops. A nil LabelHash/LabelEqual or VertexEqual skips
// deduplication entirely (every pair is kept), since the client did not
// supply an equality to dedupe by.
func DedupeConnected(sig graph.Sig, existing []graph.Edge, fresh []ConnectedEdge) []ConnectedEdge {
	if sig.LabelHash == nil || sig.LabelEqual == nil || sig.VertexEqual == nil {
		return fresh
	}
	type bucketed struct {
		label  graph.Label
		vertex graph.Vertex
	}
	buckets := map[uint64][]bucketed{}
	for _, e := range existing {
		h := sig.LabelHash(e.Label)
		buckets[h] = append(buckets[h], bucketed{label: e.Label, vertex: e.Remote.Vertex})
	}
	matches := func(h uint64, label graph.Label, v graph.Vertex) bool {
		for _, b := range buckets[h] {
			if sig.LabelEqual(b.label, label) && sig.VertexEqual(b.vertex, v) {
				return true
			}
		}
		return false
	}

	out := make([]ConnectedEdge, 0, len(fresh))
	for _, c := range fresh {
		h := sig.LabelHash(c.Label)
		if matches(h, c.Label, c.Vertex) {
			sig.FreeVertex(c.Vertex)
			sig.FreeLabel(c.Label)
			continue
		}
		buckets[h] = append(buckets[h], bucketed{label: c.Label, vertex: c.Vertex})
		out = append(out, c)
	}
	return out
}

// BuildWorker runs one worker's share of a build job to completion,
// returning its output queue ([]*graph.Node) for the coordinator to
// concatenate.
func BuildWorker(r *router.Router, self int, params *BuildParams) any {
	p := r.Ports[self]
	pod := packet.NewPod(r.Lanes(), self)
	table := map[uint64][]*graph.Node{}
	var queue []*graph.Node
	perWorkerCap := params.Builder.Sig.PerWorkerCap(r.Lanes())
	var created uint64

	for {
		pkts, dismissed := scatter.Recv(r, self, p, pod)
		if dismissed {
			return queue
		}
		for _, pkt := range pkts {
			if scatter.Sample(r) {
				params.Builder.Sig.FreeVertex(pkt.Payload)
				continue
			}
			if err := buildStep(r, self, pod, params, table, &queue, &created, perWorkerCap, pkt); err != nil {
				r.Fail(err)
				r.FireInternal()
			}
		}
	}
}

func buildStep(r *router.Router, self int, pod *packet.Pod, params *BuildParams, table map[uint64][]*graph.Node, queue *[]*graph.Node, created *uint64, perWorkerCap uint64, pkt *packet.Packet) error {
	sig := params.Builder.Sig
	vertex := pkt.Payload

	for _, n := range table[pkt.HashValue] {
		if sig.VertexEqual(n.Vertex, vertex) {
			sig.FreeVertex(vertex)
			if pkt.Sender != nil {
				pkt.Sender.AddEdge(graph.Edge{Label: pkt.Carrier, Remote: n})
			}
			if params.Builder.Subconnector != nil && pkt.Sender != nil && !n.SawCarrier(sig, pkt.Carrier) {
				ctx := NewContext(BuildContext)
				if err := params.Builder.Subconnector(ctx, false, pkt.Carrier, vertex); err != nil {
					return codes.Wrap(codes.ContradictoryConnector, err)
				}
				fresh := DedupeConnected(sig, n.EdgesOut, ctx.Connected)
				return dispatchConnected(r, pod, params, n, fresh)
			}
			return nil
		}
	}

	if perWorkerCap > 0 && *created >= perWorkerCap {
		return codes.New(codes.CapExceeded, "vertex cap exceeded")
	}

	n := &graph.Node{Vertex: vertex}
	table[pkt.HashValue] = append(table[pkt.HashValue], n)
	*created++
	*queue = append(*queue, n)

	if pkt.Sender != nil {
		pkt.Sender.AddEdge(graph.Edge{Label: pkt.Carrier, Remote: n})
	}

	ctx := NewContext(BuildContext)
	if err := params.Builder.expand(ctx, pkt.Initial, pkt.Carrier, vertex); err != nil {
		return codes.Wrap(codes.ContradictoryConnector, err)
	}
	fresh := DedupeConnected(sig, nil, ctx.Connected)
	return dispatchConnected(r, pod, params, n, fresh)
}

func dispatchConnected(r *router.Router, pod *packet.Pod, params *BuildParams, sender *graph.Node, edges []ConnectedEdge) error {
	lanes := r.Lanes()
	for _, e := range edges {
		hv := r.Sig.VertexHash(e.Vertex)
		dest := int(hv % uint64(lanes))

		var pkt *packet.Packet
		if params.Reserve != nil {
			var ok bool
			pkt, ok = params.Reserve.Get(e.Vertex, hv)
			if !ok {
				// allocation exhausted even with the reserve: drop this
				// one edge, freeing its payload, and let the caller
				// decide whether to keep going or roll back.
				params.Builder.Sig.FreeVertex(e.Vertex)
				params.Builder.Sig.FreeLabel(e.Label)
				return codes.New(codes.AssertionFailed, "packet reserve exhausted")
			}
		} else {
			pkt = packet.New(e.Vertex, hv)
		}
		pkt.Sender = sender
		pkt.Carrier = e.Label

		pod.Stage(dest, pkt)
	}
	return nil
}

// AssembleBuilt concatenates each worker's output queue and locates the
// base node (the one holding seed) to finish constructing the graph.
func AssembleBuilt(sig graph.Sig, seed graph.Vertex, queues []any) *graph.Graph {
	g := graph.NewGraph(sig)
	var base *graph.Node
	for _, q := range queues {
		nodes, _ := q.([]*graph.Node)
		for _, n := range nodes {
			g.Append(n)
			if base == nil && sig.VertexEqual != nil && sig.VertexEqual(n.Vertex, seed) {
				base = n
			}
		}
	}
	g.Base = base
	return g
}
