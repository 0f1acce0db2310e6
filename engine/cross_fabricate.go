package engine

import (
	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/router"
)

// Crossed computes the Cartesian product of a and b under crosser,
// materialising a fresh product graph.Graph owned by sig, per spec.md
// §4.10's cross worked example.
func Crossed(sig graph.Sig, a, b *graph.Graph, crosser ops.Crosser, opts ...Option) (*graph.Graph, error) {
	if a == nil || a.Base == nil || b == nil || b.Base == nil {
		return nil, codes.New(codes.BadGraph, "cross requires two non-empty graphs")
	}
	o := build(opts)
	lanes := o.resolvedLanes()

	params := &ops.CrossParams{Crosser: crosser, SeedA: a.Base, SeedB: b.Base}
	r := router.New(lanes, sig, params)
	defer o.bind(r)()

	for _, na := range a.Nodes() {
		for _, nb := range b.Nodes() {
			ops.SeedCross(r, na, nb)
		}
	}
	results := crew.Launch(r, func(self int) any {
		return ops.CrossWorker(r, self, params)
	})
	if err := r.Status(); err != nil {
		return nil, err
	}
	return ops.AssembleCrossed(sig, results), nil
}

// Fabricated copies source into a fresh, isomorphic graph.Graph owned
// by destSig, transforming vertices and labels through fabricator, per
// spec.md §4.10 "Fabricate". The identity fabricator (Vertex/Label both
// return their input unchanged) performs a structural deep copy.
func Fabricated(destSig graph.Sig, source *graph.Graph, fabricator ops.Fabricator, opts ...Option) (*graph.Graph, error) {
	if source == nil || source.Base == nil {
		return graph.NewGraph(destSig), nil
	}
	o := build(opts)
	lanes := o.resolvedLanes()

	params := &ops.FabricateParams{Fabricator: fabricator, Seed: source.Base, SourceSig: source.Sig}
	r := router.New(lanes, destSig, params)
	defer o.bind(r)()

	ops.SeedFabricate(r, source.Sig, source.Base)
	results := crew.Launch(r, func(self int) any {
		return ops.FabricateWorker(r, self, params)
	})
	if err := r.Status(); err != nil {
		return nil, err
	}
	return ops.AssembleFabricated(destSig, results), nil
}
