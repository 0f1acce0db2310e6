package engine

import (
	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/router"
)

// FreeNow reclaims every node of g synchronously, walking the node
// list directly and invoking the graph's destructor pair, per spec.md
// §4.12's sequential reclamation path.
func FreeNow(g *graph.Graph) {
	ops.FreeSync(g)
}

// FreeLater reclaims g's nodes with a parallel scatter/gather traversal
// from its base node, per spec.md §4.12 "Graph free (parallel)". If the
// traversal itself fails, it falls back to the synchronous path (spec.md
// §7: "on error paths traversals fall back to sequential reclamation").
func FreeLater(g *graph.Graph, opts ...Option) error {
	if g == nil || g.Base == nil {
		return nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()

	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.FreeWorker(r, self) })
	if err := r.Status(); err != nil {
		FreeNow(g)
		return err
	}
	for _, p := range r.Ports {
		for _, n := range p.Deletions() {
			g.Destroy(n)
		}
	}
	return nil
}
