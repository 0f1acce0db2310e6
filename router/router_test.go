package router

import (
	"errors"
	"testing"
	"time"

	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/kill"
	"github.com/flowgraph/dagflow/packet"
)

func TestQuiescenceOnSingleLane(t *testing.T) {
	r := New(1, graph.Sig{}, nil)

	done := make(chan struct{})
	go func() {
		_, dismissed := r.Suspend(r.Ports[0])
		if !dismissed {
			t.Errorf("expected dismissal, not packets")
		}
		close(done)
	}()

	r.AwaitQuiescence()
	r.Dismiss()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not observe dismissal")
	}
}

func TestDispatchWakesSuspendedPeer(t *testing.T) {
	r := New(2, graph.Sig{}, nil)

	woke := make(chan []*packet.Packet, 1)
	go func() {
		pkts, _ := r.Suspend(r.Ports[1])
		woke <- pkts
	}()

	time.Sleep(10 * time.Millisecond)
	r.Dispatch(r.Ports[1], []*packet.Packet{packet.New("hi", 0)})

	select {
	case pkts := <-woke:
		if len(pkts) != 1 {
			t.Fatalf("expected one packet delivered, got %v", pkts)
		}
	case <-time.After(time.Second):
		t.Fatalf("peer never woke up")
	}

	// lane 0 already has a packet pending, so its Suspend hands it over
	// at once instead of blocking or reporting a dismissal
	r.Dispatch(r.Ports[0], []*packet.Packet{packet.New("pending", 0)})
	_, dismissed := r.Suspend(r.Ports[0])
	if dismissed {
		t.Fatalf("lane 0 should not be dismissed before quiescence")
	}
}

func TestFailFirstWriterWins(t *testing.T) {
	r := New(1, graph.Sig{}, nil)
	first := codes.New(codes.CapExceeded, "over")
	second := errors.New("later, ignored")
	r.Fail(first)
	r.Fail(second)
	if r.Status() != first {
		t.Fatalf("Status() should be the first recorded error")
	}
	r.Fail(nil)
	if r.Status() != first {
		t.Fatalf("Fail(nil) must not clear status")
	}
}

func TestNoteUserKillSetsInterrupted(t *testing.T) {
	r := New(1, graph.Sig{}, nil)
	kill.Fire(r.Killed())
	r.NoteUserKill()
	if codes.Of(r.Status()) != codes.Interrupted {
		t.Fatalf("Status() should report Interrupted after a user kill")
	}
}
