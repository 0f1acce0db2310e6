package engine_test

import (
	"strconv"
	"testing"

	"github.com/flowgraph/dagflow/engine"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/reach"
)

// TestInducedSumsAlongDAG exercises §4.6 "Induction": a backward fold
// over a diamond DAG (0 -> 1,2 -> 3) that sums each node's own value
// with its prerequisites' settled accumulators should reach the base
// node with the total of every vertex's contribution, counted once per
// edge into it (3 is reached twice, so it contributes twice).
func TestInducedSumsAlongDAG(t *testing.T) {
	sig := stringSig()
	edges := map[string][]string{"0": {"1", "2"}, "1": {"3"}, "2": {"3"}}
	builder := ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			for _, to := range edges[v.(string)] {
				if err := ctx.Connect("L", to); err != nil {
					return err
				}
			}
			return nil
		},
	}
	g, err := engine.Built(sig, "0", builder, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	fold := func(vertex graph.Vertex, adjacent []any) (any, error) {
		// Induction here runs RemoteFirst (backward): a node's
		// prerequisites are its successors, so node "0" sees the
		// already-settled totals of "1" and "2" before folding its own
		// contribution of 1.
		total := 1
		for _, a := range adjacent {
			total += a.(int)
		}
		return total, nil
	}
	result, err := engine.Induced(g, reach.Backward, fold, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Induced: %v", err)
	}
	// 3: 1; 1: 1+1=2; 2: 1+1=2; 0: 1+2+2=5.
	if result.(int) != 5 {
		t.Fatalf("Induced = %v, want 5", result)
	}
}

// TestMutatedUnconstrainedRewritesVertices exercises §4.10 "Mutate"
// under Unconstrained order: every reachable vertex is rewritten
// in place, independent of its neighbours.
func TestMutatedUnconstrainedRewritesVertices(t *testing.T) {
	g, err := engine.Built(stringSig(), "0", cycleBuilder(3), engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	kernel := ops.MutateKernel{
		Vertex: func(vertex graph.Vertex, adjacent []any) (graph.Vertex, error) {
			return "v" + vertex.(string), nil
		},
	}
	if err := engine.Mutated(g, ops.Unconstrained, kernel, engine.WithLanes(2)); err != nil {
		t.Fatalf("Mutated: %v", err)
	}
	seen := map[string]bool{}
	for _, n := range g.Nodes() {
		seen[n.Vertex.(string)] = true
	}
	for _, want := range []string{"v0", "v1", "v2"} {
		if !seen[want] {
			t.Fatalf("mutated graph missing vertex %q, got %v", want, seen)
		}
	}
}

// TestMutatedRemoteFirstSeesSettledSuccessors exercises §4.10 "Mutate"
// under RemoteFirst order: a node's rewrite can read its
// already-rewritten successors' vertices (RemoteFirst's prerequisites
// are EdgesOut, available without a prior ToFullDuplex pass), here
// propagating a running sum up a chain from leaf to root.
func TestMutatedRemoteFirstSeesSettledSuccessors(t *testing.T) {
	sig := stringSig()
	edges := map[string][]string{"0": {"1"}, "1": {"2"}}
	builder := ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			for _, to := range edges[v.(string)] {
				if err := ctx.Connect("L", to); err != nil {
					return err
				}
			}
			return nil
		},
	}
	g, err := engine.Built(sig, "0", builder, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	byOriginal := map[string]*graph.Node{}
	for _, n := range g.Nodes() {
		byOriginal[n.Vertex.(string)] = n
	}

	kernel := ops.MutateKernel{
		Vertex: func(vertex graph.Vertex, adjacent []any) (graph.Vertex, error) {
			own, _ := strconv.Atoi(vertex.(string))
			total := own
			for _, a := range adjacent {
				prev, _ := strconv.Atoi(a.(string))
				total += prev
			}
			return strconv.Itoa(total), nil
		},
	}
	if err := engine.Mutated(g, ops.RemoteFirst, kernel, engine.WithLanes(2)); err != nil {
		t.Fatalf("Mutated: %v", err)
	}
	// leaf "2" has no successors: settles to itself, "2". "1" sees
	// "2"'s settled value and becomes 1+2="3". "0" sees "1"'s settled
	// value and becomes 0+3="3".
	if got := byOriginal["2"].Vertex.(string); got != "2" {
		t.Fatalf("leaf node settled to %q, want %q", got, "2")
	}
	if got := byOriginal["1"].Vertex.(string); got != "3" {
		t.Fatalf("middle node settled to %q, want %q", got, "3")
	}
	if got := byOriginal["0"].Vertex.(string); got != "3" {
		t.Fatalf("root node settled to %q, want %q", got, "3")
	}
}

// TestStretchedInterposesVertex exercises §4.10 "Stretch": interposing
// a vertex on every edge turns an n-edge chain into a 2n-edge chain
// with n extra vertices.
func TestStretchedInterposesVertex(t *testing.T) {
	g, err := engine.Built(stringSig(), "0", cycleBuilder(3), engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	pred := func(n *graph.Node, e graph.Edge) (bool, error) { return true, nil }
	stretcher := func(ctx *ops.Context, n *graph.Node, e graph.Edge) error {
		mid := "mid-" + n.Vertex.(string) + "-" + e.Remote.Vertex.(string)
		return ctx.Stretch("in", mid, "out")
	}
	if err := engine.Stretched(g, pred, stretcher, engine.WithLanes(2)); err != nil {
		t.Fatalf("Stretched: %v", err)
	}
	if got := g.NumVertices(); got != 6 {
		t.Fatalf("vertices after stretch = %d, want 6 (3 original + 3 interposed)", got)
	}
	if got := g.NumEdges(); got != 6 {
		t.Fatalf("edges after stretch = %d, want 6 (2 per original edge)", got)
	}
}
