package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
)

// PruneUnreachable removes and destroys every node of g not marked
// reachable across r's ports, as populated by a final reachability
// pass from g's base node — the "prune" pass shared by filter (§4.8)
// and merge (§4.9): "collecting only nodes reachable after all
// deletions; unreachable nodes are freed."
func PruneUnreachable(r *router.Router, g *graph.Graph) {
	owner := reach.OwnerOf(g.Sig, r.Lanes())
	var dead []*graph.Node
	g.Walk(func(n *graph.Node) bool {
		if !r.Ports[owner(n)].Reachable(n) {
			dead = append(dead, n)
		}
		return true
	})
	for _, n := range dead {
		g.Remove(n)
		g.Destroy(n)
	}
}
