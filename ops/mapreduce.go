package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// VertexMap computes a per-node value from the node's vertex and its
// outgoing/incoming edges, for the map half of a map-reduce fold.
type VertexMap func(n *graph.Node) (any, error)

// Reduction combines two map-reduce values. It must be associative —
// the spec leaves traversal order, and therefore association order,
// unobservable, and requires the client to honour that contract.
type Reduction func(a, b any) (any, error)

// Fold bundles a map-reduce's three callbacks, per the glossary's
// "{map, reduction, vacuous_case, destructors}".
type Fold struct {
	Map         VertexMap
	Reduction   Reduction
	VacuousCase any
}

// MapReduceWorker applies fold.Map to each node reachable from the
// traversal's seed and folds the results into a single running value
// with fold.Reduction, returning nil if this worker visited nothing.
func MapReduceWorker(r *router.Router, self int, fold *Fold) any {
	var acc any
	var has bool
	TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			v, err := fold.Map(n)
			if err != nil {
				return err
			}
			if !has {
				acc, has = v, true
				return nil
			}
			combined, err := fold.Reduction(acc, v)
			if err != nil {
				return err
			}
			acc = combined
			return nil
		},
	})
	if !has {
		return nil
	}
	return acc
}

// JoinMapReduce combines every worker's partial result (nil entries
// skipped, for workers that visited nothing) using a binary tree of
// fold.Reduction invocations, per spec.md §4.6 "Joiners combine
// per-worker optional values in a binary-tree of reduction
// invocations". An empty graph (no non-nil partials) yields
// fold.VacuousCase.
func JoinMapReduce(fold *Fold, results []any) (any, error) {
	vals := make([]any, 0, len(results))
	for _, res := range results {
		if res != nil {
			vals = append(vals, res)
		}
	}
	if len(vals) == 0 {
		return fold.VacuousCase, nil
	}
	for len(vals) > 1 {
		next := make([]any, 0, (len(vals)+1)/2)
		i := 0
		for ; i+1 < len(vals); i += 2 {
			v, err := fold.Reduction(vals[i], vals[i+1])
			if err != nil {
				return nil, err
			}
			next = append(next, v)
		}
		if i < len(vals) {
			next = append(next, vals[i])
		}
		vals = next
	}
	return vals[0], nil
}
