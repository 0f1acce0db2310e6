// Package ops implements the operation-specific worker event loops built
// on top of the generic scatter/gather runtime: build, cross, fabricate,
// mapreduce, induce, partition, merge, filter, compose, split, stretch,
// postpone, mutate, dedup, and free, per spec.md §4.4-§4.12.
package ops

import (
	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/kill"
)

// Tag names which client callback a Context is valid for. connect and
// stretch are only legal while the matching callback is executing on
// the calling goroutine; calling them at any other time is
// OUT_OF_CONTEXT.
type Tag int

const (
	NoContext Tag = iota
	BuildContext
	StretchContext
)

// ConnectedEdge is one edge a connector/subconnector callback asserted
// via Context.Connect, captured before its terminus vertex has become a
// node.
type ConnectedEdge struct {
	Label  graph.Label
	Vertex graph.Vertex
}

// Interposed is the (label-in, vertex, label-out) triple a stretcher
// callback asserts via Context.Stretch.
type Interposed struct {
	LabelIn  graph.Label
	Vertex   graph.Vertex
	LabelOut graph.Label
}

// Context is the per-callback-invocation handle passed to client code in
// place of the thread-local state the original runtime read directly:
// each call to a connector, subconnector, or stretcher gets a fresh
// Context tagged for exactly the operation invoking it, so Connect and
// Stretch can reject use outside their permitted phase without any
// global or goroutine-local state.
type Context struct {
	Tag Tag

	Connected  []ConnectedEdge
	Interposed *Interposed
}

// NewContext creates a context for the given phase.
func NewContext(tag Tag) *Context {
	return &Context{Tag: tag}
}

// Connect asserts an outgoing edge labelled label to terminus from the
// vertex currently being expanded. Valid only inside a build connector
// or subconnector.
func (c *Context) Connect(label graph.Label, terminus graph.Vertex) error {
	if c.Tag != BuildContext {
		return codes.New(codes.OutOfContext, "connect called outside a build callback")
	}
	c.Connected = append(c.Connected, ConnectedEdge{Label: label, Vertex: terminus})
	return nil
}

// Stretch asserts an interposed vertex between the edge currently being
// considered by a stretcher callback. Valid only inside a Stretcher.
func (c *Context) Stretch(labelIn graph.Label, vertex graph.Vertex, labelOut graph.Label) error {
	if c.Tag != StretchContext {
		return codes.New(codes.OutOfContext, "stretch called outside a stretcher callback")
	}
	c.Interposed = &Interposed{LabelIn: labelIn, Vertex: vertex, LabelOut: labelOut}
	return nil
}

// Kill requests cancellation through ks, callable from any client
// callback regardless of context tag.
func Kill(ks *kill.Switch) {
	if ks != nil {
		ks.Fire()
	}
}
