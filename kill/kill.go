// Package kill implements client-visible cancellation tokens ("kill
// switches") and the two-category kill sentinel a router's worker loop
// polls, per spec.md §4.3.
//
// A Switch is a detached handle until Enable binds it to a running
// job's killed field; Fire before that point only latches a pending
// request, which Enable honours immediately on the next bind. A Switch
// may be rebound across successive jobs (disabled from one, enabled on
// the next) — it is not single-use.
package kill

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Category distinguishes a user-requested cancellation (surfaced to the
// caller as an interruption error) from an internal kill a worker raises
// to drain the pool after a local error, which is swallowed into the
// router's own status instead.
type Category int32

const (
	none     Category = 0
	byUser   Category = 1
	internal Category = 2
)

// Killed reports whether k has been set to any category.
func Killed(k *int32) bool {
	return atomic.LoadInt32(k) != int32(none)
}

// KilledByUser reports whether k was set via a user-requested Fire.
func KilledByUser(k *int32) bool {
	return atomic.LoadInt32(k) == int32(byUser)
}

// KilledInternally reports whether k was set via FireInternal.
func KilledInternally(k *int32) bool {
	return atomic.LoadInt32(k) == int32(internal)
}

// Fire sets k to the user-kill sentinel, unless it is already set to
// some category (first request wins; a later Fire or FireInternal is a
// no-op). It reports whether this call was the one that set it.
func Fire(k *int32) bool {
	return atomic.CompareAndSwapInt32(k, int32(none), int32(byUser))
}

// FireInternal sets k to the internal-kill sentinel, unless it is
// already set. Workers use this to drain the pool after a local error
// without surfacing the user-facing interruption error code.
func FireInternal(k *int32) bool {
	return atomic.CompareAndSwapInt32(k, int32(none), int32(internal))
}

// Switch is a client-owned cancellation token, connectable to at most
// one job's killed field at a time.
type Switch struct {
	ID uuid.UUID

	mu      sync.Mutex
	target  *int32
	pending bool
}

// New allocates a detached switch.
func New() *Switch {
	return &Switch{ID: uuid.New()}
}

// Enabled reports whether the switch is currently bound to a router's
// killed field, per original_source/src/killers.c's refcounted
// enable/disable pair: a switch may be disabled from one finished job
// and enabled on the next rather than being single-use.
func (k *Switch) Enabled() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.target != nil
}

// Enable connects k to target, the killed field of the router running
// the job k should be able to cancel. If k had a latched pending
// request from being fired while detached, it fires immediately.
func (k *Switch) Enable(target *int32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.target = target
	if k.pending {
		k.pending = false
		Fire(target)
	}
}

// Disable severs k's binding to whatever router it was connected to,
// leaving it ready to be enabled against a later job.
func (k *Switch) Disable() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.target = nil
}

// Fire requests cancellation. If k is currently bound, it sets the
// bound router's killed field (first request wins); if detached, the
// request is latched and replays on the next Enable.
func (k *Switch) Fire() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.target != nil {
		Fire(k.target)
		return
	}
	k.pending = true
}
