package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// CountWorker tallies, for this worker's share of a traversal from the
// seed, the number of unique nodes visited and the number of outgoing
// edges on each ("Node/edge/terminus counting", §4.5). Returning the
// pair lets the coordinator sum both with one traversal.
type Count struct {
	Nodes uint64
	Edges uint64
}

func CountWorker(r *router.Router, self int) any {
	var c Count
	TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			c.Nodes++
			c.Edges += uint64(len(n.EdgesOut))
			return nil
		},
	})
	return c
}

// SumCounts folds per-worker Count results into totals.
func SumCounts(results []any) Count {
	var total Count
	for _, r := range results {
		c, _ := r.(Count)
		total.Nodes += c.Nodes
		total.Edges += c.Edges
	}
	return total
}
