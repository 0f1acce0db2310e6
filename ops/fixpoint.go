package ops

import (
	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/router"
)

// appendCreated drains every port's queued Created() nodes into g, the
// common cleanup after a pass that may have materialised new nodes
// (stretch's interposed vertices, split's ana copies).
func appendCreated(g *graph.Graph, r *router.Router) {
	for _, p := range r.Ports {
		for _, n := range p.Created() {
			g.Append(n)
		}
	}
}

// StretchToFixpoint runs StretchWorker passes over g until a pass
// changes nothing, the fixpoint iteration spec.md §4.10 asks for on
// top of stretch's single-pass worker. Each pass reseeds from g.Base
// and resets the router for reuse; nodes interposed during a pass are
// appended to g before the next pass starts, so later passes can reach
// them through the edges the prior pass rewired.
func StretchToFixpoint(r *router.Router, g *graph.Graph, pred StretchPred, stretcher Stretcher) {
	for {
		var changed int64
		SeedNode(r, g.Base)
		crew.Launch(r, func(self int) any {
			return StretchWorker(r, self, pred, stretcher, &changed)
		})
		appendCreated(g, r)
		if changed == 0 {
			return
		}
		r.Reset()
	}
}

// ComposeToFixpoint runs ComposeWorker passes over g until a pass
// creates no further bypass edges.
func ComposeToFixpoint(r *router.Router, g *graph.Graph, spec ComposeSpec) {
	for {
		var changed int64
		SeedNode(r, g.Base)
		crew.Launch(r, func(self int) any {
			return ComposeWorker(r, self, spec, &changed)
		})
		if changed == 0 {
			return
		}
		r.Reset()
	}
}

// PostponeToFixpoint runs PostponeWorker passes over g until a pass
// relocates no further edges.
func PostponeToFixpoint(r *router.Router, g *graph.Graph, pred PostponePred) {
	for {
		var changed int64
		SeedNode(r, g.Base)
		crew.Launch(r, func(self int) any {
			return PostponeWorker(r, self, pred, &changed)
		})
		if changed == 0 {
			return
		}
		r.Reset()
	}
}
