// Package port implements a worker's persistent per-job state: its
// inbox ("assigned"), its private deferred-retry queue, the
// reachable/visited/survivor/deletions sets used by multi-pass
// operations, and the suspension primitive the quiescence detector in
// package router drives workers through.
//
// A Port's inbox is the only field touched by peer workers (via Send),
// so it alone is mutex-guarded; everything else here is either private
// to the owning worker (deferred, backoff) or read by peers only
// through a read lock (the traversal sets).
package port

import (
	"sync"

	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
)

// Port is one worker's mailbox and traversal-local state.
type Port struct {
	ID int

	mu       sync.Mutex
	assigned []*packet.Packet
	waiting  bool
	dismissed bool
	wakeCh   chan struct{}

	// Deferred is this worker's private retry queue; only its owning
	// worker ever reads or writes it (packets land here via its own pod
	// during its own recv, and leave it via its own undefer call).
	Deferred []*packet.Packet
	// Backoff counts consecutive spins without pool-wide progress, used
	// to compute the 2^backoff microsecond sleep in package scatter.
	Backoff int
	// NoProgress counts consecutive recv rounds in which this worker
	// circulated nothing and reclaimed nothing, feeding the optional
	// deadlock detector in package scatter.
	NoProgress int

	setsMu    sync.RWMutex
	reachable map[*graph.Node]struct{}
	visited   map[*graph.Node]struct{}
	survivors map[*graph.Node]struct{}
	deletions []*graph.Node
	created   []*graph.Node
	disabled  bool
}

// New creates an empty port with the given worker id.
func New(id int) *Port {
	return &Port{
		ID:     id,
		wakeCh: make(chan struct{}, 1),
	}
}

// Send appends pkts to the port's inbox and reports whether the port
// was waiting at the moment of the append — the caller bumps the
// router's running count and wakes the port only in that case. The
// waiting flag is cleared here, so of several senders racing to a
// waiting port only the first reports true.
func (p *Port) Send(pkts []*packet.Packet) (wasWaiting bool) {
	if len(pkts) == 0 {
		return false
	}
	p.mu.Lock()
	p.assigned = append(p.assigned, pkts...)
	wasWaiting = p.waiting
	p.waiting = false
	p.mu.Unlock()
	if wasWaiting {
		p.signal()
	}
	return wasWaiting
}

func (p *Port) signal() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

// TakeInbox atomically swaps the inbox to empty and returns the prior
// contents, the "self-delivery" and "source.assigned swap" steps of
// recv.
func (p *Port) TakeInbox() []*packet.Packet {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.assigned
	p.assigned = nil
	return out
}

// Peek reports whether the inbox currently holds anything, without
// taking it.
func (p *Port) Peek() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.assigned) > 0
}

// PrepareSuspend is step 4 of recv, split so the router can adjust its
// running count around the actual block. If the inbox has filled in the
// meantime, or the port has already been dismissed, it returns
// immediately with blocked=false and the caller does not suspend. Only
// when blocked is true has the port been marked waiting, and the caller
// must follow up with Block.
func (p *Port) PrepareSuspend() (pkts []*packet.Packet, dismissed bool, blocked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.assigned) > 0 {
		pkts = p.assigned
		p.assigned = nil
		return pkts, false, false
	}
	if p.dismissed {
		return nil, true, false
	}
	p.waiting = true
	return nil, false, true
}

// Block waits for a wake-up (a Send that observed this port waiting, or
// a Dismiss), then takes whatever landed in the inbox, clearing the
// waiting flag. It must only be called after PrepareSuspend returned
// blocked=true.
func (p *Port) Block() (pkts []*packet.Packet, dismissed bool) {
	<-p.wakeCh
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waiting = false
	pkts = p.assigned
	p.assigned = nil
	dismissed = p.dismissed
	return pkts, dismissed
}

// Dismiss discards any remaining inbox, marks the port permanently
// dismissed, and wakes it if it is currently blocked in Block — the
// quiescence detector's final step, applied to every port once under
// each port's own lock.
func (p *Port) Dismiss() {
	p.mu.Lock()
	p.assigned = nil
	p.dismissed = true
	p.mu.Unlock()
	p.signal()
}

// Dismissed reports whether Dismiss has been called.
func (p *Port) Dismissed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dismissed
}

// ResetForNextPass clears a port's per-pass mailbox state (inbox,
// dismissal, backoff, deferred retries) ahead of another pass of a
// multi-pass operation, while deliberately leaving the
// reachable/visited/survivors/deletions sets alone — those are the
// bookkeeping a later pass is meant to read.
func (p *Port) ResetForNextPass() {
	p.mu.Lock()
	p.assigned = nil
	p.waiting = false
	p.dismissed = false
	p.mu.Unlock()
	p.Deferred = nil
	p.Backoff = 0
	p.NoProgress = 0
}

// --- traversal sets -------------------------------------------------

func ensure(m *map[*graph.Node]struct{}) {
	if *m == nil {
		*m = make(map[*graph.Node]struct{})
	}
}

// MarkReachable records n as reachable from this port's share of the
// traversal.
func (p *Port) MarkReachable(n *graph.Node) {
	p.setsMu.Lock()
	ensure(&p.reachable)
	p.reachable[n] = struct{}{}
	p.setsMu.Unlock()
}

// Reachable reports whether n was marked reachable by this port. Peers
// call this under the port's own read lock.
func (p *Port) Reachable(n *graph.Node) bool {
	p.setsMu.RLock()
	defer p.setsMu.RUnlock()
	_, ok := p.reachable[n]
	return ok
}

// MarkVisited records n as visited by this port (induction, constrained
// order traversal).
func (p *Port) MarkVisited(n *graph.Node) {
	p.setsMu.Lock()
	ensure(&p.visited)
	p.visited[n] = struct{}{}
	p.setsMu.Unlock()
}

// Visited reports whether n was marked visited by this port.
func (p *Port) Visited(n *graph.Node) bool {
	p.setsMu.RLock()
	defer p.setsMu.RUnlock()
	_, ok := p.visited[n]
	return ok
}

// MarkSurvivor records n as a survivor of a filter/prune pass.
func (p *Port) MarkSurvivor(n *graph.Node) {
	p.setsMu.Lock()
	ensure(&p.survivors)
	p.survivors[n] = struct{}{}
	p.setsMu.Unlock()
}

// Survivors returns a snapshot slice of this port's survivor set.
func (p *Port) Survivors() []*graph.Node {
	p.setsMu.RLock()
	defer p.setsMu.RUnlock()
	out := make([]*graph.Node, 0, len(p.survivors))
	for n := range p.survivors {
		out = append(out, n)
	}
	return out
}

// QueueDeletion appends n to this port's deletions list, for the
// parallel-free traversal to reclaim on quiescence.
func (p *Port) QueueDeletion(n *graph.Node) {
	p.setsMu.Lock()
	p.deletions = append(p.deletions, n)
	p.setsMu.Unlock()
}

// Deletions returns this port's queued deletions.
func (p *Port) Deletions() []*graph.Node {
	p.setsMu.RLock()
	defer p.setsMu.RUnlock()
	out := make([]*graph.Node, len(p.deletions))
	copy(out, p.deletions)
	return out
}

// QueueCreated records n as a node this port's worker materialised
// mid-traversal (e.g. an interposed vertex during stretch, or a
// doppelganger during split) so the coordinator can append it to the
// graph's node list once the pass reaches quiescence.
func (p *Port) QueueCreated(n *graph.Node) {
	p.setsMu.Lock()
	p.created = append(p.created, n)
	p.setsMu.Unlock()
}

// Created returns this port's queued, newly materialised nodes.
func (p *Port) Created() []*graph.Node {
	p.setsMu.RLock()
	defer p.setsMu.RUnlock()
	out := make([]*graph.Node, len(p.created))
	copy(out, p.created)
	return out
}

// Disable marks this port permanently unvisitable after an
// unrecoverable local error, so peers reading Disabled short-circuit
// visitability checks against its nodes.
func (p *Port) Disable() {
	p.setsMu.Lock()
	p.disabled = true
	p.setsMu.Unlock()
}

// Disabled reports whether Disable has been called.
func (p *Port) Disabled() bool {
	p.setsMu.RLock()
	defer p.setsMu.RUnlock()
	return p.disabled
}
