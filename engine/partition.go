package engine

import (
	"sync"

	"github.com/flowgraph/dagflow/crew"
	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/internal/disjoint"
	"github.com/flowgraph/dagflow/ops"
	"github.com/flowgraph/dagflow/router"
)

// Partition is a graph binned into equivalence classes by a classifier,
// per spec.md §4.7 "Partition & union-find". It is safe for concurrent
// reads (ClassOf, ClassSize, United); FreePartition is the only writer.
type Partition struct {
	sig graph.Sig

	mu      sync.RWMutex
	classOf map[*graph.Node]*disjoint.Class[any]
	buckets map[uint64][]*graph.Node
}

// PartitionOf classifies every node reachable from g's base node,
// binning nodes whose classifier.Prop values are PropEqual into the
// same equivalence class. A subsequent United/ClassOf query does not
// need the crew that built the partition — the result is a plain,
// goroutine-safe value.
func PartitionOf(g *graph.Graph, classifier ops.Classifier, opts ...Option) (*Partition, error) {
	if g == nil {
		return &Partition{}, nil
	}
	if g.Base == nil {
		return &Partition{sig: g.Sig}, nil
	}
	o := build(opts)
	r := router.New(o.resolvedLanes(), g.Sig, nil)
	defer o.bind(r)()

	classOf, err := classifyNodes(r, g, classifier)
	if err != nil {
		return nil, err
	}
	buckets := map[uint64][]*graph.Node{}
	for n := range classOf {
		hv := g.Sig.VertexHash(n.Vertex)
		buckets[hv] = append(buckets[hv], n)
	}
	return &Partition{sig: g.Sig, classOf: classOf, buckets: buckets}, nil
}

// classifyNodes runs partition's two classifying passes over r (already
// created for and bound to g's job) and returns every node reachable
// from g.Base mapped to its equivalence class. Shared by PartitionOf
// and Merged, which both need this classification before diverging:
// PartitionOf just returns it, Merged goes on to fold classes together.
func classifyNodes(r *router.Router, g *graph.Graph, classifier ops.Classifier) (map[*graph.Node]*disjoint.Class[any], error) {
	ops.SeedNode(r, g.Base)
	crew.Launch(r, func(self int) any { return ops.PartitionPass1Worker(r, self, classifier.Prop) })
	if err := r.Status(); err != nil {
		return nil, err
	}

	var survivors []*graph.Node
	for _, p := range r.Ports {
		survivors = append(survivors, p.Survivors()...)
	}

	r.Reset()
	ops.SeedNodesHashed(r, survivors, func(n *graph.Node) uint64 {
		n.Lock()
		prop := n.Scratch
		n.Unlock()
		return classifier.PropHash(prop)
	})
	results := crew.Launch(r, func(self int) any { return ops.PartitionPass2Worker(r, self, classifier) })
	if err := r.Status(); err != nil {
		return nil, err
	}

	classOf := map[*graph.Node]*disjoint.Class[any]{}
	for _, res := range results {
		m, _ := res.(map[*graph.Node]*disjoint.Class[any])
		for n, cls := range m {
			classOf[n] = cls
		}
	}
	return classOf, nil
}

func (p *Partition) nodeFor(v graph.Vertex) (*graph.Node, bool) {
	hv := p.sig.VertexHash(v)
	for _, n := range p.buckets[hv] {
		if p.sig.VertexEqual(n.Vertex, v) {
			return n, true
		}
	}
	return nil, false
}

// ClassOf returns v's equivalence class.
func ClassOf(p *Partition, v graph.Vertex) (*disjoint.Class[any], error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.nodeFor(v)
	if !ok {
		return nil, codes.New(codes.VertexNotFound, "vertex not found in partition")
	}
	cls, ok := p.classOf[n]
	if !ok {
		return nil, codes.New(codes.BadPartition, "node has no assigned class")
	}
	return cls.Find(), nil
}

// ClassSize returns the number of members in v's equivalence class.
func ClassSize(p *Partition, v graph.Vertex) (int, error) {
	cls, err := ClassOf(p, v)
	if err != nil {
		return 0, err
	}
	return cls.Refs(), nil
}

// United reports whether a and b belong to the same equivalence class.
func United(p *Partition, a, b graph.Vertex) (bool, error) {
	ca, err := ClassOf(p, a)
	if err != nil {
		return false, err
	}
	cb, err := ClassOf(p, b)
	if err != nil {
		return false, err
	}
	return disjoint.Related(ca, cb), nil
}

// FreePartition releases p's internal bookkeeping. With now true the
// release happens before FreePartition returns; otherwise it is
// scheduled onto a separate goroutine, mirroring the "now" vs deferred
// distinction spec.md §6 draws for partition-free.
func FreePartition(p *Partition, now bool) {
	if p == nil {
		return
	}
	release := func() {
		p.mu.Lock()
		p.classOf = nil
		p.buckets = nil
		p.mu.Unlock()
	}
	if now {
		release()
		return
	}
	go release()
}
