// Package engine is the public façade a Go caller imports: one function
// per algebra operation (Built, Crossed, Fabricated, MapReduced, Induced,
// PartitionOf, United, Stretched, Split, Composed, Merged, Filtered,
// Deduplicated, Mutated, Postponed, the Free family), each assembling a
// router.Router and crew.Launch invocation from a graph.Sig and an
// operation-specific parameter block, per spec.md §6 "Embedding API".
package engine

import (
	"runtime"

	"github.com/flowgraph/dagflow/debugsrv"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/kill"
	"github.com/flowgraph/dagflow/metrics"
	"github.com/flowgraph/dagflow/router"
	"github.com/flowgraph/dagflow/scatter"
)

// Logf is the injected-logger shape every long-lived engine type accepts,
// following the teacher's Logf func(format string, v ...interface{})
// convention rather than a package-level logger. A nil Logf is silent.
type Logf func(format string, args ...interface{})

// Options configures a job: how many lanes its crew has, whether its
// output graph enforces a vertex cap, and test-only hooks. The zero
// value is valid and picks sane defaults (Lanes 0 means runtime.NumCPU()).
type Options struct {
	lanes      int
	vertexCap  uint64
	logf       Logf
	allocHook  scatter.AllocHook
	killSwitch *kill.Switch
	metrics    *metrics.Collectors
	debug      *debugsrv.Registry
}

// Option mutates an Options under construction.
type Option func(*Options)

// WithLanes sets the crew size. Zero or unset means runtime.NumCPU().
func WithLanes(n int) Option {
	return func(o *Options) { o.lanes = n }
}

// WithVertexCap bounds the number of nodes a built graph may hold,
// divided across the crew per graph.Sig.PerWorkerCap.
func WithVertexCap(cap uint64) Option {
	return func(o *Options) { o.vertexCap = cap }
}

// WithLogf injects a logger, following the teacher's per-type Logf
// injection pattern instead of a global logger.
func WithLogf(fn Logf) Option {
	return func(o *Options) { o.logf = fn }
}

// WithAllocTestHook installs a packet-allocation failure hook for
// exercising the CAP_EXCEEDED/deferred-retry and memory-pressure test
// scenarios from spec.md §8 without a real OOM.
func WithAllocTestHook(hook scatter.AllocHook) Option {
	return func(o *Options) { o.allocHook = hook }
}

// WithMetrics attaches a prometheus-backed collector set so this job
// reports packet, quiescence, and worker-count events. Unset, a job
// records nothing (the zero metrics.Collectors pointer is a no-op).
func WithMetrics(m *metrics.Collectors) Option {
	return func(o *Options) { o.metrics = m }
}

// WithDebugRegistry registers this job with reg for the duration of
// the call, so it shows up in debugsrv's /jobs listing while running.
func WithDebugRegistry(reg *debugsrv.Registry) Option {
	return func(o *Options) { o.debug = reg }
}

// build resolves opts into an Options value, applying defaults.
func build(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// resolvedLanes returns the effective crew size.
func (o Options) resolvedLanes() int {
	if o.lanes > 0 {
		return o.lanes
	}
	return runtime.NumCPU()
}

// withCap returns sig with VertexCap overridden when the caller set
// WithVertexCap, leaving any cap already on sig alone otherwise.
func (o Options) withCap(sig graph.Sig) graph.Sig {
	if o.vertexCap != 0 {
		sig.VertexCap = o.vertexCap
	}
	return sig
}

// bind wires a freshly created router into o: its logger, its metrics
// collector, and, if the caller supplied one via WithKillSwitch, its
// kill switch. It returns a cleanup func the caller should defer
// immediately — untracking r from the debug registry once its job
// finishes, so /jobs doesn't accumulate entries for completed work.
func (o Options) bind(r *router.Router) func() {
	r.Logf = o.logf
	r.Metrics = o.metrics
	if o.killSwitch != nil {
		o.killSwitch.Enable(r.Killed())
	}
	if o.debug != nil {
		o.debug.Track(r)
		return func() { o.debug.Untrack(r) }
	}
	return func() {}
}

// noteReserveDepth records pr's current depth under r's job id, once,
// right after the reserve is built and replenished. Later Get/Put
// traffic against the reserve is not individually sampled — see
// DESIGN.md for why a point-in-time reading at job start is enough
// for this gauge's purpose (catching reserves that start undersized).
func (o Options) noteReserveDepth(r *router.Router, pr *scatter.PacketReserve) {
	if pr == nil {
		return
	}
	o.metrics.ReserveDepth(r.ID.String(), pr.Depth())
}

// reserve builds a packet reserve sized for the crew, wired to the
// allocation test hook if one was supplied, or nil if not — a nil
// *scatter.PacketReserve means build relies on ordinary heap allocation
// alone.
func (o Options) reserve(lanes int) *scatter.PacketReserve {
	if o.allocHook == nil {
		return nil
	}
	pr := scatter.NewPacketReserve(lanes*4, o.allocHook)
	pr.Replenish()
	return pr
}
