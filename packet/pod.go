package packet

// Pod is a worker's thread-local outbox: one packet list per destination
// port, plus a deferrals list for packets whose scatter failed under
// memory pressure and must be retried later. Being thread-local, a Pod
// needs no locking of its own — only the inbox it eventually flushes
// into (see package port) is shared.
type Pod struct {
	lanes      [][]*Packet
	Deferrals  []*Packet
	self       int
}

// NewPod creates a pod with n lanes, one per worker in the crew, and
// records which lane is this worker's own (for the recv self-delivery
// fast path).
func NewPod(n, self int) *Pod {
	return &Pod{lanes: make([][]*Packet, n), self: self}
}

// Stage appends pkt to the outgoing list bound for worker dest.
func (p *Pod) Stage(dest int, pkt *Packet) {
	p.lanes[dest] = append(p.lanes[dest], pkt)
}

// Defer appends pkt to the deferrals list, for a packet that could not
// be scattered this round.
func (p *Pod) Defer(pkt *Packet) {
	p.Deferrals = append(p.Deferrals, pkt)
}

// Self returns this pod's own lane without clearing it, for recv's
// self-delivery step ("if pod[own_index] is non-empty, recycle it").
func (p *Pod) Self() []*Packet {
	return p.lanes[p.self]
}

// TakeSelf removes and returns this pod's own lane.
func (p *Pod) TakeSelf() []*Packet {
	out := p.lanes[p.self]
	p.lanes[p.self] = nil
	return out
}

// Lane returns the outgoing list bound for worker i without clearing it.
func (p *Pod) Lane(i int) []*Packet {
	return p.lanes[i]
}

// TakeLane removes and returns the outgoing list bound for worker i, for
// the circulate step that flushes every non-empty lane to its peer's
// inbox.
func (p *Pod) TakeLane(i int) []*Packet {
	out := p.lanes[i]
	p.lanes[i] = nil
	return out
}

// TakeDeferrals removes and returns the full deferrals list, for undefer
// reclaiming every port's deferred packets into its assigned inbox.
func (p *Pod) TakeDeferrals() []*Packet {
	out := p.Deferrals
	p.Deferrals = nil
	return out
}

// Len reports the number of lanes in the pod (the crew size).
func (p *Pod) Len() int {
	return len(p.lanes)
}

// Empty reports whether every lane and the deferrals list are empty.
func (p *Pod) Empty() bool {
	if len(p.Deferrals) != 0 {
		return false
	}
	for _, l := range p.lanes {
		if len(l) != 0 {
			return false
		}
	}
	return true
}
