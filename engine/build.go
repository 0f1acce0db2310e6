package engine

import (
	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/router"
)

// Built explores the graph implicitly specified by seed and builder in
// parallel across a crew, returning the materialised graph.Graph, per
// spec.md §4.4 "Build".
func Built(sig graph.Sig, seed graph.Vertex, builder ops.Builder, opts ...Option) (*graph.Graph, error) {
	if builder.Connector == nil && builder.Subconnector == nil {
		return nil, codes.New(codes.UndefinedCallback, "builder requires a connector or subconnector")
	}
	o := build(opts)
	builder.Sig = o.withCap(sig)
	lanes := o.resolvedLanes()

	reserve := o.reserve(lanes)
	params := &ops.BuildParams{Builder: builder, Seed: seed, Reserve: reserve}
	r := router.New(lanes, o.withCap(sig), params)
	defer o.bind(r)()
	o.noteReserveDepth(r, reserve)

	hv := sig.VertexHash(seed)
	r.Ports[int(hv%uint64(lanes))].Send([]*packet.Packet{packet.Seed(seed, hv)})

	queues := crew.Launch(r, func(self int) any {
		return ops.BuildWorker(r, self, params)
	})
	if err := r.Status(); err != nil {
		return nil, err
	}
	return ops.AssembleBuilt(sig, seed, queues), nil
}
