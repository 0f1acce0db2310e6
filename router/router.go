// Package router implements the job-wide ensemble context shared by a
// crew of workers: the port array, the running-worker count that drives
// quiescence detection, the kill sentinel, the first-error-wins status,
// and an operation-specific parameter block, per spec.md §2 ("Router")
// and §4.2 ("Quiescence detector").
package router

import (
	"sync"

	"github.com/google/uuid"

	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/kill"
	"github.com/flowgraph/dagflow/metrics"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/port"
)

// Router unites one job's ports, its running-count/quiescence state,
// its kill sentinel, and its accumulated status. Params carries the
// operation-specific parameter block (builder, crosser, fold, ...); it
// is a sum type realised as `any`, with each package under ops
// asserting the concrete type it expects.
type Router struct {
	ID     uuid.UUID
	Ports  []*port.Port
	Sig    graph.Sig
	Params any

	// Logf receives one line per notable lifecycle event (first error,
	// user kill) when non-nil; nil (the default) is silent,
	// following the teacher's injected-logger convention rather than a
	// package-level logger.
	Logf func(format string, args ...interface{})

	// Metrics receives packet/quiescence/worker-count events when
	// non-nil; nil (the default) costs nothing beyond the nil check.
	Metrics *metrics.Collectors

	mu         sync.Mutex
	running    int
	quiescent  bool
	transition chan struct{}

	killed int32

	statusMu sync.Mutex
	status   error
}

// New creates a router with one port per lane, all counted as running
// (the crew has not yet launched any worker into its first suspension).
func New(lanes int, sig graph.Sig, params any) *Router {
	r := &Router{
		ID:         uuid.New(),
		Sig:        sig,
		Params:     params,
		running:    lanes,
		transition: make(chan struct{}),
	}
	r.Ports = make([]*port.Port, lanes)
	for i := range r.Ports {
		r.Ports[i] = port.New(i)
	}
	return r
}

func (r *Router) logf(format string, args ...interface{}) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// Lanes reports the crew size.
func (r *Router) Lanes() int { return len(r.Ports) }

// Snapshot reports the job's current running count, whether its crew
// has reached quiescence, and whether its kill sentinel has been
// raised, for debugsrv's introspection endpoint.
func (r *Router) Snapshot() (running int, quiescent bool, killed bool) {
	r.mu.Lock()
	running, quiescent = r.running, r.quiescent
	r.mu.Unlock()
	return running, quiescent, kill.Killed(&r.killed)
}

// Killed returns the address of this router's kill sentinel, for
// binding to a kill.Switch and for the worker loop's periodic sampling.
func (r *Router) Killed() *int32 { return &r.killed }

// Dispatch delivers pkts to port p's inbox, bumping the running count if
// p was suspended waiting for exactly this wake-up.
func (r *Router) Dispatch(p *port.Port, pkts []*packet.Packet) {
	if p.Send(pkts) {
		r.incRunning()
	}
}

// NoteSent and NoteDeferred feed the router's metrics collector from
// package scatter's circulate step, which is the only place packets
// actually change lanes or enter a deferred-retry queue.
func (r *Router) NoteSent(lane, n int) {
	r.Metrics.Sent(lane, n)
}

func (r *Router) NoteDeferred(lane, n int) {
	r.Metrics.Deferred(lane, n)
}

// Suspend carries a worker through recv's step 4: it asks p to suspend,
// decrementing the running count around the actual block (and
// signalling quiescence if this suspension is the one that brings
// running to zero). A worker woken with real work is already counted as
// running again, because the Dispatch that woke it bumped the count.
func (r *Router) Suspend(p *port.Port) (pkts []*packet.Packet, dismissed bool) {
	pkts, dismissed, blocked := p.PrepareSuspend()
	if !blocked {
		return pkts, dismissed
	}
	r.decRunning()
	pkts, dismissed = p.Block()
	return pkts, dismissed
}

func (r *Router) incRunning() {
	r.mu.Lock()
	r.running++
	r.mu.Unlock()
	r.Metrics.WorkerStarted()
}

func (r *Router) decRunning() {
	r.mu.Lock()
	r.running--
	reachedZero := r.running == 0 && !r.quiescent
	if reachedZero {
		r.quiescent = true
	}
	r.mu.Unlock()
	r.Metrics.WorkerStopped()
	if reachedZero {
		r.Metrics.Quiesced()
		close(r.transition)
	}
}

// AwaitQuiescence blocks until every worker is simultaneously suspended
// with an empty inbox, the coordinator's cue to start dismissal.
func (r *Router) AwaitQuiescence() {
	<-r.transition
}

// Reset prepares the router for another pass over the same crew: the
// running count is restored to the full crew size, quiescent is
// cleared, and a fresh transition channel is installed, while every
// port's reachable/visited/survivor/deletions sets are left untouched.
// Multi-pass operations (induction, filter, merge, mutate, stretch,
// compose, postpone) call this between passes instead of allocating a
// new Router, since a later pass typically depends on bookkeeping an
// earlier pass recorded on each port.
func (r *Router) Reset() {
	r.mu.Lock()
	r.running = len(r.Ports)
	r.quiescent = false
	r.transition = make(chan struct{})
	r.mu.Unlock()
	for _, p := range r.Ports {
		p.ResetForNextPass()
	}
}

// Dismiss ends the job: every port discards its remaining inbox, is
// marked dismissed, and wakes any worker still blocked in Block so it
// observes the dismissal and returns from the worker loop. Call this
// only after AwaitQuiescence has returned.
func (r *Router) Dismiss() {
	for _, p := range r.Ports {
		p.Dismiss()
	}
}

// Fail records err as the job's status if no earlier error has already
// been recorded — first-writer-wins, per spec.md §5 "Local recovery".
// A nil err is a no-op.
func (r *Router) Fail(err error) {
	if err == nil {
		return
	}
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	if r.status == nil {
		r.status = err
		r.logf("job %s: first error: %v", r.ID, err)
	}
}

// Status returns the job's first recorded error, or nil.
func (r *Router) Status() error {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.status
}

// FireInternal raises an internal kill so every worker drains and exits
// without surfacing a user-facing interruption code; the caller is
// expected to have already recorded the local error that motivated it
// via Fail.
func (r *Router) FireInternal() {
	kill.FireInternal(&r.killed)
}

// NoteUserKill records the dedicated interruption status the first time
// it observes a user-requested kill, so the caller's eventual Status()
// read reflects cancellation rather than whatever partial work was in
// flight.
func (r *Router) NoteUserKill() {
	if kill.KilledByUser(&r.killed) {
		r.logf("job %s: killed by user", r.ID)
		r.Fail(codes.New(codes.Interrupted, "cancelled via kill switch"))
	}
}
