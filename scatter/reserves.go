package scatter

import (
	"github.com/flowgraph/dagflow/internal/reserve"
	"github.com/flowgraph/dagflow/packet"
)

// AllocHook lets tests simulate heap exhaustion at the packet
// allocation boundary. A nil hook means allocation always succeeds.
type AllocHook func() error

// PacketReserve is the process-wide stash of pre-allocated packets a
// worker dips into when a heap allocation fails mid-scatter, per
// spec.md §4.1 "Packet reserves".
type PacketReserve struct {
	pool *reserve.Pool[*packet.Packet]
	hook AllocHook
}

// NewPacketReserve creates a reserve with room for capacity packets.
func NewPacketReserve(capacity int, hook AllocHook) *PacketReserve {
	pr := &PacketReserve{hook: hook}
	pr.pool = reserve.New(capacity, pr.allocate)
	return pr
}

func (pr *PacketReserve) allocate() (*packet.Packet, error) {
	if pr.hook != nil {
		if err := pr.hook(); err != nil {
			return nil, err
		}
	}
	return &packet.Packet{}, nil
}

// Replenish tops the reserve up to capacity. Call this at every
// client-visible engine entry point before a job starts.
func (pr *PacketReserve) Replenish() {
	pr.pool.Replenish()
}

// Get returns a packet carrying payload and hv, preferring a fresh heap
// allocation and falling back to the reserve. ok is false only when
// both the heap and the reserve are exhausted.
func (pr *PacketReserve) Get(payload any, hv uint64) (*packet.Packet, bool) {
	p, ok := pr.pool.Get()
	if !ok {
		return nil, false
	}
	*p = packet.Packet{Payload: payload, HashValue: hv}
	return p, true
}

// Put returns a freed packet to the reserve, clearing its fields first
// so it does not keep a stale payload reachable.
func (pr *PacketReserve) Put(p *packet.Packet) {
	*p = packet.Packet{}
	pr.pool.Put(p)
}

// Depth reports how many packets the reserve currently holds, for the
// metrics package's reserve-depth gauge.
func (pr *PacketReserve) Depth() int {
	return pr.pool.Len()
}
