package engine

import (
	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/router"
)

func countGraph(g *graph.Graph, opts []Option) (ops.Count, error) {
	if g == nil || g.Base == nil {
		return ops.Count{}, nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()
	ops.SeedNode(r, g.Base)
	results := crew.Launch(r, func(self int) any { return ops.CountWorker(r, self) })
	if err := r.Status(); err != nil {
		return ops.Count{}, err
	}
	return ops.SumCounts(results), nil
}

// VertexCount returns the number of nodes reachable from g's base node.
func VertexCount(g *graph.Graph, opts ...Option) (uint64, error) {
	c, err := countGraph(g, opts)
	return c.Nodes, err
}

// EdgeCount returns the total number of outgoing edges across every
// node reachable from g's base node.
func EdgeCount(g *graph.Graph, opts ...Option) (uint64, error) {
	c, err := countGraph(g, opts)
	return c.Edges, err
}

// MapReduced folds fold.Map over every node reachable from g's base
// node, combining results with fold.Reduction, per spec.md §4.6
// "Map-reduce". An empty graph yields fold.VacuousCase.
func MapReduced(g *graph.Graph, fold *ops.Fold, opts ...Option) (any, error) {
	if g == nil || g.Base == nil {
		return fold.VacuousCase, nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()
	ops.SeedNode(r, g.Base)
	results := crew.Launch(r, func(self int) any { return ops.MapReduceWorker(r, self, fold) })
	if err := r.Status(); err != nil {
		return nil, err
	}
	return ops.JoinMapReduce(fold, results)
}

// ToFullDuplex populates EdgesIn across every node reachable from g's
// base node, so predecessor-aware operations (split, backward
// traversals) have something to read. ToHalfDuplex reverts it.
func ToFullDuplex(g *graph.Graph, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()
	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.ToFullDuplexWorker(r, self) })
	if err := r.Status(); err != nil {
		return err
	}
	ops.SetDuplex(g, true)
	return nil
}

// ToHalfDuplex clears EdgesIn across every node reachable from g's base
// node.
func ToHalfDuplex(g *graph.Graph, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()
	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.ToHalfDuplexWorker(r, self) })
	if err := r.Status(); err != nil {
		return err
	}
	ops.SetDuplex(g, false)
	return nil
}
