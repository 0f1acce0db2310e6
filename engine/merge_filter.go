package engine

import (
	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/router"
)

// Merged collapses g's nodes into equivalence classes under classifier,
// folding each class's vertices and outgoing edges with kernel, per
// spec.md §4.9 "Merge". It mutates g in place: after Merged returns,
// g.Base may point at a different node than before, if the original
// base node was absorbed into another member's representative.
func Merged(g *graph.Graph, classifier ops.Classifier, kernel ops.Kernel, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()

	classOf, err := classifyNodes(r, g, classifier)
	if err != nil {
		return err
	}

	reps, err := ops.ClusterClasses(kernel, classOf)
	if err != nil {
		return err
	}
	members := ops.GroupMembers(classOf)
	if err := ops.FuseEdges(kernel, classOf, reps, members); err != nil {
		return err
	}

	if cls, ok := classOf[g.Base]; ok {
		g.Base = reps[cls.Find()]
	}

	r.Reset()
	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.ReachabilityFromWorker(r, self) })
	if err := r.Status(); err != nil {
		return err
	}
	ops.PruneUnreachable(r, g)
	return nil
}

// Deduplicated merges nodes with equal vertices and dedupes outgoing
// edges sharing a label and terminus, per spec.md §4.11's closing
// invariant. It is Merged specialised to an identity classifier and a
// keep-first kernel — deduplication only needs to pick a
// representative, not combine differing data.
func Deduplicated(g *graph.Graph, opts ...Option) error {
	if g == nil {
		return nil
	}
	return Merged(g, ops.IdentityClassifier(g.Sig), ops.KeepFirstKernel(), opts...)
}

// Filtered removes every node Keep rejects and every edge KeepEdge
// rejects from g in place, then prunes whatever becomes unreachable
// from g.Base as a result, per spec.md §4.8 "Filter".
func Filtered(g *graph.Graph, spec ops.FilterSpec, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()

	ops.SeedNode(r, g.Base)
	nodeResults := crew.Launch(r, func(self int) any { return ops.FilterNodePassWorker(r, self, spec) })
	if err := r.Status(); err != nil {
		return err
	}
	deleted := map[*graph.Node]struct{}{}
	for _, res := range nodeResults {
		ns, _ := res.([]*graph.Node)
		for _, n := range ns {
			deleted[n] = struct{}{}
		}
	}

	r.Reset()
	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.FilterEdgePassWorker(r, self, spec, deleted) })
	if err := r.Status(); err != nil {
		return err
	}

	r.Reset()
	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.ReachabilityFromWorker(r, self) })
	if err := r.Status(); err != nil {
		return err
	}
	ops.PruneUnreachable(r, g)
	return nil
}
