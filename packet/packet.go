// Package packet defines the unit of work exchanged between workers (a
// Packet) and each worker's thread-local outbox (a Pod), per spec.md
// §3 "Packet & pod" and §4.1 "Packet transport".
package packet

import "github.com/flowgraph/dagflow/graph"

// Packet carries one unit of traversal work between ports. Payload is
// phase-specific: during construction it holds a candidate vertex before
// a node exists for it; in every later phase it holds a *graph.Node.
// Ownership of Payload transfers from the sending port's pod to the
// receiving port's inbox the moment the packet is appended there — the
// sender must not touch it again.
type Packet struct {
	Payload any

	Sender   *graph.Node // nil for the seed packet
	Carrier  graph.Label // the label the packet travelled on, if any
	Receiver *graph.Node // set once the destination node is known

	HashValue uint64
	Initial   bool
}

// New creates a non-initial packet with hash hv.
func New(payload any, hv uint64) *Packet {
	return &Packet{Payload: payload, HashValue: hv}
}

// Seed creates the single initial packet that starts a job.
func Seed(payload any, hv uint64) *Packet {
	return &Packet{Payload: payload, HashValue: hv, Initial: true}
}
