package ops

import (
	"github.com/flowgraph/dagflow/graph"
)

// IdentityClassifier builds the classifier deduplication runs on top of
// merge's machinery (§4.11 "Deduplicated"): two nodes belong to the
// same class exactly when sig.VertexEqual judges their vertices equal,
// so ClusterClasses/FuseEdges collapse every run of equal-vertex nodes
// down to one representative, same as an explicit merge job would with
// this classifier.
func IdentityClassifier(sig graph.Sig) Classifier {
	return Classifier{
		Prop: func(n *graph.Node) (any, error) {
			return n.Vertex, nil
		},
		PropHash:  func(v any) uint64 { return sig.VertexHash(v) },
		PropEqual: func(a, b any) bool { return sig.VertexEqual(a, b) },
	}
}

// KeepFirstKernel is deduplication's default kernel: the first node
// visited in each class keeps its own vertex, and the first edge seen
// toward each destination class keeps its own label — "first" meaning
// whichever member ClusterClasses/FuseEdges happens to fold first,
// which is sufficient because deduplication only needs to pick a
// representative, not combine differing data.
func KeepFirstKernel() Kernel {
	return Kernel{
		Vertex: func(acc, _ graph.Vertex) (graph.Vertex, error) { return acc, nil },
		Edge:   func(acc, _ graph.Label) (graph.Label, error) { return acc, nil },
	}
}
