package engine

import (
	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// Induced computes fold's accumulator over g in constrained order along
// dir, returning the base node's settled accumulator, per spec.md §4.6
// "Induction". A prior reachability pass populates the visitability
// bookkeeping the induction pass needs; a final pass clears every
// node's Scratch cell afterward, per the spec's two-pass description.
func Induced(g *graph.Graph, dir reach.Direction, fold ops.InductionFold, opts ...Option) (any, error) {
	if g == nil || g.Base == nil {
		return nil, nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()

	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.ReachabilityWorker(r, self, dir) })
	if err := r.Status(); err != nil {
		return nil, err
	}

	r.Reset()
	ops.SeedNode(r, g.Base)
	params := &ops.InduceParams{Dir: dir, Fold: fold}
	crew.Launch(r, func(self int) any { return ops.InduceWorker(r, self, params) })
	if err := r.Status(); err != nil {
		return nil, err
	}

	g.Base.Lock()
	result := g.Base.Scratch
	g.Base.Unlock()

	r.Reset()
	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.FreeAccumulatorsWorker(r, self) })
	if err := r.Status(); err != nil {
		return nil, err
	}
	return result, nil
}
