package reach

import (
	"testing"

	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/port"
)

func sigFor(lanes int) graph.Sig {
	return graph.Sig{VertexHash: func(v graph.Vertex) uint64 { return uint64(v.(int)) }}
}

func TestOwnerIsDeterministicByHash(t *testing.T) {
	sig := sigFor(4)
	n := &graph.Node{Vertex: 7}
	if got := Owner(sig, n, 4); got != 7%4 {
		t.Fatalf("Owner = %d, want %d", got, 7%4)
	}
}

func TestVisitableWhenPrerequisiteVisited(t *testing.T) {
	ports := []*port.Port{port.New(0), port.New(1)}
	owner := func(*graph.Node) int { return 0 }

	pred := &graph.Node{Vertex: "pred"}
	n := &graph.Node{Vertex: "n"}
	n.EdgesIn = []graph.Edge{{Label: "x", Remote: pred}}

	if !Visitable(n, Forward, ports, owner) {
		t.Fatalf("n should be visitable while its prerequisite is not marked reachable")
	}
	ports[0].MarkReachable(pred)
	if Visitable(n, Forward, ports, owner) {
		t.Fatalf("n should not be visitable while pred is reachable but not yet visited")
	}
	ports[0].MarkVisited(pred)
	if !Visitable(n, Forward, ports, owner) {
		t.Fatalf("n should be visitable once pred is visited")
	}
}

func TestVisitableWhenPrerequisiteUnreachable(t *testing.T) {
	ports := []*port.Port{port.New(0)}
	owner := func(*graph.Node) int { return 0 }

	pred := &graph.Node{Vertex: "outside"}
	n := &graph.Node{Vertex: "n"}
	n.EdgesIn = []graph.Edge{{Label: "x", Remote: pred}}

	if !Visitable(n, Forward, ports, owner) {
		t.Fatalf("a prerequisite never marked reachable should not block visitability")
	}
}

func TestDisabledOwnerBlocksVisitability(t *testing.T) {
	ports := []*port.Port{port.New(0)}
	owner := func(*graph.Node) int { return 0 }
	ports[0].Disable()

	pred := &graph.Node{Vertex: "pred"}
	n := &graph.Node{Vertex: "n"}
	n.EdgesIn = []graph.Edge{{Label: "x", Remote: pred}}

	if Visitable(n, Forward, ports, owner) {
		t.Fatalf("a prerequisite owned by a disabled port must make n unvisitable")
	}
}

func TestRetirableMirrorsVisitableForward(t *testing.T) {
	ports := []*port.Port{port.New(0)}
	owner := func(*graph.Node) int { return 0 }

	succ := &graph.Node{Vertex: "succ"}
	n := &graph.Node{Vertex: "n"}
	n.EdgesOut = []graph.Edge{{Label: "x", Remote: succ}}

	ports[0].MarkReachable(succ)
	if Retirable(n, Forward, ports, owner) {
		t.Fatalf("n should not be retirable while a successor is reachable but unvisited")
	}
	ports[0].MarkVisited(succ)
	if !Retirable(n, Forward, ports, owner) {
		t.Fatalf("n should be retirable once its successor is visited")
	}
}
