package ops

import (
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/internal/disjoint"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/reach"
	"github.com/flowgraph/dagflow/router"
	"github.com/flowgraph/dagflow/scatter"
)

// ClassProp is a classifier's vertex prop: it yields the "property"
// value a node's equivalence class is derived from.
type ClassProp func(n *graph.Node) (any, error)

// PropHash and PropEqual let the engine bucket and chain nodes by
// property without knowing its concrete type, the property-level
// counterpart of graph.Hash/graph.Equal.
type PropHash func(any) uint64
type PropEqual func(a, b any) bool

// Classifier bundles a partition's three callbacks.
type Classifier struct {
	Prop      ClassProp
	PropHash  PropHash
	PropEqual PropEqual
}

// PartitionPass1Worker is the classifier's property-setting pass: every
// reachable node's Scratch cell is set to its property, and the node is
// recorded into this port's survivor set for pass 2's reseed.
func PartitionPass1Worker(r *router.Router, self int, classify ClassProp) any {
	return TraverseWorker(r, self, &TraverseParams{
		Dir: reach.Forward,
		Visit: func(self int, n *graph.Node) error {
			prop, err := classify(n)
			if err != nil {
				return err
			}
			n.Lock()
			n.Scratch = prop
			n.Unlock()
			r.Ports[self].MarkSurvivor(n)
			return nil
		},
	})
}

// PartitionPass2Worker is the cooperative binning pass: nodes arrive
// here hash-routed by property (not by vertex), so every node sharing a
// property lands on the same worker and can be chained by property
// equality. The first node reaching a class allocates a fresh Class;
// every later match retains it, per spec.md §4.7.
func PartitionPass2Worker(r *router.Router, self int, c Classifier) any {
	p := r.Ports[self]
	pod := packet.NewPod(r.Lanes(), self)

	type chain struct {
		prop  any
		class *disjoint.Class[any]
	}
	var local []chain
	assign := map[*graph.Node]*disjoint.Class[any]{}

	for {
		pkts, dismissed := scatter.Recv(r, self, p, pod)
		if dismissed {
			return assign
		}
		for _, pkt := range pkts {
			if scatter.Sample(r) {
				continue
			}
			n, _ := pkt.Payload.(*graph.Node)
			if n == nil {
				continue
			}
			n.Lock()
			prop := n.Scratch
			n.Unlock()

			var cls *disjoint.Class[any]
			for _, ch := range local {
				if c.PropEqual(ch.prop, prop) {
					cls = ch.class.Retain()
					break
				}
			}
			if cls == nil {
				cls = disjoint.NewClass[any](prop)
				local = append(local, chain{prop: prop, class: cls})
			}
			assign[n] = cls
		}
	}
}
