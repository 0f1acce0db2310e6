package engine_test

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/flowgraph/dagflow/engine"
	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/ops"
)

// stringSig is shared by every scenario below: vertices and labels are
// plain strings, hashed with FNV-1a and compared with ==, the same
// shape cmd/dagflow uses for its own graph files.
func stringSig() graph.Sig {
	return graph.Sig{
		VertexHash:  hashString,
		VertexEqual: func(a, b graph.Vertex) bool { return a.(string) == b.(string) },
		LabelHash:   hashString,
		LabelEqual:  func(a, b graph.Label) bool { return a.(string) == b.(string) },
	}
}

func hashString(v any) uint64 {
	h := fnv.New64a()
	h.Write([]byte(v.(string)))
	return h.Sum64()
}

// cycleBuilder emits a connector for an n-node cycle 0->1->...->(n-1)->0,
// every edge labelled "L".
func cycleBuilder(n int) ops.Builder {
	return ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			i, _ := strconv.Atoi(v.(string))
			return ctx.Connect("L", strconv.Itoa((i+1)%n))
		},
	}
}

// TestBuiltFourCycle is spec.md §8 scenario 1: build a 4-cycle
// {a->b->c->d->a} and check VertexCount/EdgeCount.
func TestBuiltFourCycle(t *testing.T) {
	g, err := engine.Built(stringSig(), "0", cycleBuilder(4), engine.WithLanes(4))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	nv, err := engine.VertexCount(g, engine.WithLanes(4))
	if err != nil {
		t.Fatalf("VertexCount: %v", err)
	}
	if nv != 4 {
		t.Fatalf("VertexCount = %d, want 4", nv)
	}
	ne, err := engine.EdgeCount(g, engine.WithLanes(4))
	if err != nil {
		t.Fatalf("EdgeCount: %v", err)
	}
	if ne != 4 {
		t.Fatalf("EdgeCount = %d, want 4", ne)
	}
}

// TestDeduplicatedMultigraph is spec.md §8 scenario 2: two a->b edges
// labelled identically collapse to one after Deduplicated.
func TestDeduplicatedMultigraph(t *testing.T) {
	sig := stringSig()
	builder := ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			if v.(string) != "a" {
				return nil
			}
			if err := ctx.Connect("L", "b"); err != nil {
				return err
			}
			return ctx.Connect("L", "b")
		},
	}
	g, err := engine.Built(sig, "a", builder, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	if err := engine.Deduplicated(g, engine.WithLanes(2)); err != nil {
		t.Fatalf("Deduplicated: %v", err)
	}
	ne, err := engine.EdgeCount(g, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("EdgeCount: %v", err)
	}
	if ne != 1 {
		t.Fatalf("EdgeCount after dedup = %d, want 1", ne)
	}
}

// TestCrossedK2xK2 is spec.md §8 scenario 3: the Cartesian product of
// two two-node graphs (a->b) has 4 vertices and 1 edge — only aa->bb
// survives, since it is the only pair of source nodes where both sides
// have a matching outgoing edge.
func TestCrossedK2xK2(t *testing.T) {
	sig := stringSig()
	k2 := ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			if v.(string) == "a" {
				return ctx.Connect("L", "b")
			}
			return nil
		},
	}
	a, err := engine.Built(sig, "a", k2, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built a: %v", err)
	}
	defer engine.FreeNow(a)
	b, err := engine.Built(sig, "a", k2, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built b: %v", err)
	}
	defer engine.FreeNow(b)

	crosser := ops.Crosser{
		VertexPred: func(av, bv graph.Vertex) (bool, error) { return true, nil },
		VertexFold: func(av, bv graph.Vertex) (graph.Vertex, error) {
			return av.(string) + bv.(string), nil
		},
		EdgePred: func(la, lb graph.Label) (bool, error) {
			return la.(string) == lb.(string), nil
		},
		EdgeFold: func(la, lb graph.Label) (graph.Label, error) { return la, nil },
	}
	product, err := engine.Crossed(sig, a, b, crosser, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Crossed: %v", err)
	}
	defer engine.FreeNow(product)

	if got := product.NumVertices(); got != 4 {
		t.Fatalf("product vertices = %d, want 4", got)
	}
	if got := product.NumEdges(); got != 1 {
		t.Fatalf("product edges = %d, want 1", got)
	}
}

// TestPartitionOfSixCycleParity is spec.md §8 scenario 4: partition a
// 6-cycle into odd/even parity; two classes of size 3 each.
func TestPartitionOfSixCycleParity(t *testing.T) {
	g, err := engine.Built(stringSig(), "0", cycleBuilder(6), engine.WithLanes(3))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	classifier := ops.Classifier{
		Prop: func(n *graph.Node) (any, error) {
			i, _ := strconv.Atoi(n.Vertex.(string))
			return i % 2, nil
		},
		PropHash:  func(v any) uint64 { return uint64(v.(int)) },
		PropEqual: func(a, b any) bool { return a.(int) == b.(int) },
	}
	p, err := engine.PartitionOf(g, classifier, engine.WithLanes(3))
	if err != nil {
		t.Fatalf("PartitionOf: %v", err)
	}
	defer engine.FreePartition(p, true)

	seen := map[string]int{}
	for i := 0; i < 6; i++ {
		v := strconv.Itoa(i)
		cls, err := engine.ClassOf(p, v)
		if err != nil {
			t.Fatalf("ClassOf(%s): %v", v, err)
		}
		seen[fmt.Sprintf("%p", cls)]++
	}
	if len(seen) != 2 {
		t.Fatalf("got %d classes, want 2", len(seen))
	}
	for k, n := range seen {
		if n != 3 {
			t.Fatalf("class %s has %d members, want 3", k, n)
		}
	}
	size, err := engine.ClassSize(p, "0")
	if err != nil {
		t.Fatalf("ClassSize: %v", err)
	}
	if size != 3 {
		t.Fatalf("ClassSize(0) = %d, want 3", size)
	}
	united, err := engine.United(p, "0", "4")
	if err != nil {
		t.Fatalf("United: %v", err)
	}
	if !united {
		t.Fatalf("0 and 4 should be united (both even)")
	}
}

// TestMapReducedCountsVertices is spec.md §8 scenario 5: counting
// reachable vertices over a 5-node DAG with map=1, reduction=+,
// vacuous_case=0 yields 5.
func TestMapReducedCountsVertices(t *testing.T) {
	sig := stringSig()
	// 0 -> 1 -> 2, 0 -> 3 -> 4, a DAG (not a cycle).
	edges := map[string][]string{
		"0": {"1", "3"},
		"1": {"2"},
		"3": {"4"},
	}
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

	fold := &ops.Fold{
		Map:         func(n *graph.Node) (any, error) { return 1, nil },
		Reduction:   func(a, b any) (any, error) { return a.(int) + b.(int), nil },
		VacuousCase: 0,
	}
	result, err := engine.MapReduced(g, fold, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("MapReduced: %v", err)
	}
	if result.(int) != 5 {
		t.Fatalf("MapReduced = %v, want 5", result)
	}
}

// TestMapReducedEmptyGraphYieldsVacuousCase is spec.md §8's "Empty
// graph (null)" boundary behaviour.
func TestMapReducedEmptyGraphYieldsVacuousCase(t *testing.T) {
	fold := &ops.Fold{
		Map:         func(n *graph.Node) (any, error) { return 1, nil },
		Reduction:   func(a, b any) (any, error) { return a.(int) + b.(int), nil },
		VacuousCase: 42,
	}
	result, err := engine.MapReduced(nil, fold)
	if err != nil {
		t.Fatalf("MapReduced(nil): %v", err)
	}
	if result.(int) != 42 {
		t.Fatalf("MapReduced(nil) = %v, want vacuous case 42", result)
	}
}

// TestBuiltVertexCapExceeded is spec.md §8's "Vertex cap = 1" boundary
// behaviour: building from a seed with any outgoing edge fails with
// CAP_EXCEEDED.
func TestBuiltVertexCapExceeded(t *testing.T) {
	sig := stringSig()
	sig.VertexCap = 1
	builder := ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			return ctx.Connect("L", "b")
		},
	}
	_, err := engine.Built(sig, "a", builder, engine.WithLanes(1))
	if codes.Of(err) != codes.CapExceeded {
		t.Fatalf("Built with cap 1 = %v, want CAP_EXCEEDED", err)
	}
}

// TestBuiltSingleNodeSelfLoop is spec.md §8's "Single-node self-loop"
// boundary behaviour: build terminates and the resulting graph has one
// vertex and one edge back to itself.
func TestBuiltSingleNodeSelfLoop(t *testing.T) {
	sig := stringSig()
	builder := ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			return ctx.Connect("L", "a")
		},
	}
	g, err := engine.Built(sig, "a", builder, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)
	if got := g.NumVertices(); got != 1 {
		t.Fatalf("vertices = %d, want 1", got)
	}
	if got := g.NumEdges(); got != 1 {
		t.Fatalf("edges = %d, want 1", got)
	}
}

// TestBuiltCancelMidBuild is spec.md §8 scenario 6: firing a kill
// switch from another goroutine while an infinite-fan build runs
// eventually returns INTERRUPTED rather than hanging.
func TestBuiltCancelMidBuild(t *testing.T) {
	sig := graph.Sig{
		VertexHash:  func(v graph.Vertex) uint64 { return v.(uint64) },
		VertexEqual: func(a, b graph.Vertex) bool { return a.(uint64) == b.(uint64) },
	}
	builder := ops.Builder{
		Connector: func(ctx *ops.Context, v graph.Vertex) error {
			// every vertex fans out to two fresh, never-repeating
			// vertices, so the build never reaches quiescence on its
			// own and must be stopped by the kill switch.
			n := v.(uint64)
			if err := ctx.Connect("L", n*2+1); err != nil {
				return err
			}
			return ctx.Connect("L", n*2+2)
		},
	}
	ks := engine.NewKillSwitch()
	defer engine.FreeKillSwitch(ks)
	go func() {
		time.Sleep(5 * time.Millisecond)
		ks.Fire()
	}()

	_, err := engine.Built(sig, uint64(0), builder, engine.WithKillSwitch(ks), engine.WithLanes(4))
	if codes.Of(err) != codes.Interrupted {
		t.Fatalf("Built under kill = %v, want INTERRUPTED", err)
	}
}

// TestFilteredPrunesRejectedNodes exercises §4.8 "Filter": dropping the
// middle node of a 3-chain also drops everything only reachable through
// it.
func TestFilteredPrunesRejectedNodes(t *testing.T) {
	sig := stringSig()
	edges := map[string][]string{"a": {"b"}, "b": {"c"}}
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
	g, err := engine.Built(sig, "a", builder, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	spec := ops.FilterSpec{
		Keep:     func(n *graph.Node) (bool, error) { return n.Vertex.(string) != "b", nil },
		KeepEdge: func(n *graph.Node, e graph.Edge) (bool, error) { return true, nil },
	}
	if err := engine.Filtered(g, spec, engine.WithLanes(2)); err != nil {
		t.Fatalf("Filtered: %v", err)
	}
	if got := g.NumVertices(); got != 1 {
		t.Fatalf("vertices after filter = %d, want 1 (only a survives)", got)
	}
}

// TestFabricatedIdentityIsomorphicCopy is spec.md §8's round-trip
// property: fabricated(g, identity_fab) produces a graph isomorphic to
// g (same vertex/edge counts).
func TestFabricatedIdentityIsomorphicCopy(t *testing.T) {
	g, err := engine.Built(stringSig(), "0", cycleBuilder(4), engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	identity := ops.Fabricator{
		Vertex: func(v graph.Vertex) (graph.Vertex, error) { return v, nil },
		Label:  func(l graph.Label) (graph.Label, error) { return l, nil },
	}
	copy, err := engine.Fabricated(stringSig(), g, identity, engine.WithLanes(2))
	if err != nil {
		t.Fatalf("Fabricated: %v", err)
	}
	defer engine.FreeNow(copy)

	if copy.NumVertices() != g.NumVertices() {
		t.Fatalf("copy vertices = %d, want %d", copy.NumVertices(), g.NumVertices())
	}
	if copy.NumEdges() != g.NumEdges() {
		t.Fatalf("copy edges = %d, want %d", copy.NumEdges(), g.NumEdges())
	}
}

// TestBuildSubconnectorFiresOncePerIncidentLabel exercises spec.md §4.4
// step 3: "0", "1", and "2" all connect to "3" via the same label "L",
// so node "3" collides twice after its own creation. The subconnector
// must re-expand "3" at most once for "L" — the first collision, not
// the second — per the node-scoped seen_carriers multiset.
func TestBuildSubconnectorFiresOncePerIncidentLabel(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}

	sig := stringSig()
	builder := ops.Builder{
		Subconnector: func(ctx *ops.Context, initial bool, incidentLabel graph.Label, v graph.Vertex) error {
			mu.Lock()
			calls[v.(string)]++
			mu.Unlock()
			switch v.(string) {
			case "0":
				for _, to := range []string{"1", "2", "3"} {
					if err := ctx.Connect("L", to); err != nil {
						return err
					}
				}
			case "1", "2":
				return ctx.Connect("L", "3")
			}
			return nil
		},
	}
	g, err := engine.Built(sig, "0", builder, engine.WithLanes(1))
	if err != nil {
		t.Fatalf("Built: %v", err)
	}
	defer engine.FreeNow(g)

	if got := calls["3"]; got != 2 {
		t.Fatalf("subconnector fired %d times for node \"3\", want 2 (one creation, one re-expansion by an unseen label)", got)
	}
}
