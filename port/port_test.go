package port

import (
	"testing"
	"time"

	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
)

func TestSendWhenNotWaiting(t *testing.T) {
	p := New(0)
	if wasWaiting := p.Send([]*packet.Packet{packet.New("a", 0)}); wasWaiting {
		t.Fatalf("a fresh port should not report waiting")
	}
	if !p.Peek() {
		t.Fatalf("inbox should hold the sent packet")
	}
	got := p.TakeInbox()
	if len(got) != 1 {
		t.Fatalf("TakeInbox = %v, want 1 packet", got)
	}
	if p.Peek() {
		t.Fatalf("inbox should be empty after TakeInbox")
	}
}

func TestPrepareSuspendWithPendingInbox(t *testing.T) {
	p := New(0)
	p.Send([]*packet.Packet{packet.New("a", 0)})
	pkts, dismissed, blocked := p.PrepareSuspend()
	if blocked || dismissed || len(pkts) != 1 {
		t.Fatalf("PrepareSuspend should return the pending packet without blocking, got pkts=%v dismissed=%v blocked=%v", pkts, dismissed, blocked)
	}
}

func TestBlockWakesOnSend(t *testing.T) {
	p := New(0)
	_, dismissed, blocked := p.PrepareSuspend()
	if dismissed || !blocked {
		t.Fatalf("an empty, non-dismissed port should block")
	}

	done := make(chan struct{})
	var pkts []*packet.Packet
	var gotDismissed bool
	go func() {
		pkts, gotDismissed = p.Block()
		close(done)
	}()

	// give the goroutine a chance to reach the blocking receive
	time.Sleep(10 * time.Millisecond)
	p.Send([]*packet.Packet{packet.New("wake", 1)})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Block did not wake up after Send")
	}
	if gotDismissed || len(pkts) != 1 {
		t.Fatalf("Block() = %v, %v; want one packet, not dismissed", pkts, gotDismissed)
	}
}

func TestDismissWakesBlockedPort(t *testing.T) {
	p := New(0)
	_, _, blocked := p.PrepareSuspend()
	if !blocked {
		t.Fatalf("expected to block")
	}

	done := make(chan struct{})
	var gotDismissed bool
	go func() {
		_, gotDismissed = p.Block()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	p.Dismiss()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Block did not wake up after Dismiss")
	}
	if !gotDismissed {
		t.Fatalf("Block() should report dismissed after Dismiss")
	}
	if !p.Dismissed() {
		t.Fatalf("Dismissed() should be true")
	}
}

func TestTraversalSets(t *testing.T) {
	p := New(0)
	n := &graph.Node{Vertex: 1}
	if p.Reachable(n) || p.Visited(n) {
		t.Fatalf("fresh port should report nothing reachable or visited")
	}
	p.MarkReachable(n)
	p.MarkVisited(n)
	if !p.Reachable(n) || !p.Visited(n) {
		t.Fatalf("node should be reachable and visited after marking")
	}

	p.MarkSurvivor(n)
	if got := p.Survivors(); len(got) != 1 || got[0] != n {
		t.Fatalf("Survivors() = %v, want [n]", got)
	}

	p.QueueDeletion(n)
	if got := p.Deletions(); len(got) != 1 || got[0] != n {
		t.Fatalf("Deletions() = %v, want [n]", got)
	}

	if p.Disabled() {
		t.Fatalf("fresh port should not be disabled")
	}
	p.Disable()
	if !p.Disabled() {
		t.Fatalf("Disable() should set Disabled()")
	}
}
