package engine

import (
	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// Stretched interposes a fresh vertex on every edge matching pred,
// iterating to a fixed point (an interposed edge may itself match
// pred again), per spec.md §4.10 "Stretch".
func Stretched(g *graph.Graph, pred ops.StretchPred, stretcher ops.Stretcher, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()
	ops.StretchToFixpoint(r, g, pred, stretcher)
	return r.Status()
}

// Composed creates bypass edges from compositions of consecutive edges
// meeting spec's quaternary predicate, iterating to a fixed point, per
// spec.md §4.10 "Compose".
func Composed(g *graph.Graph, spec ops.ComposeSpec, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()
	ops.ComposeToFixpoint(r, g, spec)
	return r.Status()
}

// Postponed relocates edges matching pred onto the termini of their
// stationary siblings, iterating to a fixed point, per spec.md §4.10
// "Postpone".
func Postponed(g *graph.Graph, pred ops.PostponePred, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()
	ops.PostponeToFixpoint(r, g, pred)
	return r.Status()
}

// Split fissures every vertex matching spec.Pred into an anabolic and a
// catabolic copy, per spec.md §4.10 "Split". It requires g to already
// be full-duplex (see ToFullDuplex) so predecessor edges can be found
// and redirected toward the ana copy.
func Split(g *graph.Graph, spec ops.SplitSpec, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	if !g.Duplex {
		return codes.New(codes.BadGraph, "split requires a full-duplex graph")
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()

	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.SplitWorker(r, self, spec) })
	if err := r.Status(); err != nil {
		return err
	}
	for _, p := range r.Ports {
		for _, n := range p.Created() {
			g.Append(n)
		}
	}
	return nil
}

// Mutated rewrites g's vertices and edges in place through kernel,
// under order, per spec.md §4.10 "Mutate". Unconstrained applies kernel
// to every node in whatever order each worker dequeues it; LocalFirst
// and RemoteFirst impose the same prerequisite-readiness discipline
// induction uses, so kernel.Vertex can read its neighbours' already
// -settled vertices.
func Mutated(g *graph.Graph, order ops.MutateOrder, kernel ops.MutateKernel, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()

	if order == ops.Unconstrained {
		ops.SeedNode(r, g.Base)
		crew.Launch(r, func(self int) any { return ops.MutateUnorderedWorker(r, self, kernel) })
		return r.Status()
	}

	dir := reach.Forward
	if order == ops.RemoteFirst {
		dir = reach.Backward
	}

	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.ReachabilityWorker(r, self, dir) })
	if err := r.Status(); err != nil {
		return err
	}

	r.Reset()
	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.MutateOrderedWorker(r, self, dir, kernel) })
	return r.Status()
}
