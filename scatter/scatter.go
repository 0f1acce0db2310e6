// Package scatter implements the scatter/gather message-routing
// protocol workers drive their event loop with: recv's four-step
// self-delivery/inbox/circulate/suspend sequence, the circulate step
// that empties a pod into its peers' inboxes, undefer reclaiming a
// worker's own deferred packets, and the exponential backoff that keeps
// a pool of spinning-but-idle workers from burning CPU, all per
// spec.md §4.1.
package scatter

import (
	"time"

	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/port"
	"github.com/flowgraph/dagflow/router"
)

// maxBackoff caps the exponential sleep at 2^16 microseconds (~65ms) so
// a starved worker still wakes up often enough to notice a kill.
const maxBackoff = 16

// deadlockThreshold is how many consecutive no-progress rounds this
// worker tolerates before raising a deadlock error. The original
// deadlock detector hashes the whole pool's state periodically; this is
// a deliberately simpler per-worker proxy for the same symptom (see
// DESIGN.md).
const deadlockThreshold = 64

// Recv implements one call of the spec's recv(source_port, pod): it
// returns the next batch of packets for this worker to process, or
// reports that the port has been dismissed and the worker should exit.
func Recv(r *router.Router, self int, p *port.Port, pod *packet.Pod) (pkts []*packet.Packet, dismissed bool) {
	if got := pod.TakeSelf(); len(got) > 0 {
		return got, false
	}
	if got := p.TakeInbox(); len(got) > 0 {
		return got, false
	}

	progressed := circulate(r, self, p, pod)
	if !progressed {
		undefer(p)
	}

	if got := p.TakeInbox(); len(got) > 0 {
		p.Backoff = 0
		p.NoProgress = 0
		return got, false
	}

	noteRound(r, p, progressed)

	// a worker does not suspend while holding deferred packets: they go
	// back through its own inbox for another try
	if len(p.Deferred) > 0 {
		undefer(p)
		return p.TakeInbox(), false
	}
	return r.Suspend(p)
}

// circulate flushes every non-empty outgoing lane of pod to its peer's
// inbox and moves any deferrals into this worker's own deferred queue,
// reporting whether it moved anything at all.
func circulate(r *router.Router, self int, p *port.Port, pod *packet.Pod) bool {
	progressed := false
	for i := 0; i < pod.Len(); i++ {
		if i == self {
			continue
		}
		lane := pod.TakeLane(i)
		if len(lane) == 0 {
			continue
		}
		r.Dispatch(r.Ports[i], lane)
		r.NoteSent(self, len(lane))
		progressed = true
	}
	deferred := pod.TakeDeferrals()
	if len(deferred) > 0 {
		p.Deferred = append(p.Deferred, deferred...)
		r.NoteDeferred(self, len(deferred))
		progressed = true
	}
	return progressed
}

// undefer reclaims this worker's own deferred packets into its own
// inbox so they are retried as ordinary traffic on the next round.
func undefer(p *port.Port) {
	if len(p.Deferred) == 0 {
		return
	}
	reclaimed := p.Deferred
	p.Deferred = nil
	p.Send(reclaimed)
}

// noteRound updates a worker's backoff and deadlock-detection state
// after one recv round, firing an internal kill if this worker has
// gone deadlockThreshold consecutive rounds without circulating or
// reclaiming anything.
func noteRound(r *router.Router, p *port.Port, progressed bool) {
	if progressed {
		p.Backoff = 0
		p.NoProgress = 0
		return
	}
	p.NoProgress++
	if p.NoProgress >= deadlockThreshold {
		r.Fail(codes.New(codes.Deadlock, "worker made no progress for too many rounds"))
		r.FireInternal()
	}
	sleep(p)
}

func sleep(p *port.Port) {
	time.Sleep(time.Duration(uint64(1)<<uint(p.Backoff)) * time.Microsecond)
	if p.Backoff < maxBackoff {
		p.Backoff++
	}
}

// Sample polls the kill sentinel and the router's accumulated status,
// reporting whether the worker loop should stop. It samples on every
// call rather than bitmask-gated like the original's 2^k polling
// period — Go's scheduler makes per-packet atomic loads cheap enough
// that the extra sampling discipline is not worth the complexity here.
func Sample(r *router.Router) (stop bool) {
	r.NoteUserKill()
	return r.Status() != nil
}
