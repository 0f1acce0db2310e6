package scatter

import (
	"testing"
	"time"

	"github.com/flowgraph/dagflow/engine/codes"
	"github.com/flowgraph/dagflow/graph"
	"github.com/flowgraph/dagflow/packet"
	"github.com/flowgraph/dagflow/router"
)

func TestRecvSelfDelivery(t *testing.T) {
	r := router.New(2, graph.Sig{}, nil)
	pod := packet.NewPod(2, 0)
	pod.Stage(0, packet.New("mine", 1))

	pkts, dismissed := Recv(r, 0, r.Ports[0], pod)
	if dismissed || len(pkts) != 1 {
		t.Fatalf("expected one self-delivered packet, got %v dismissed=%v", pkts, dismissed)
	}
}

func TestRecvOwnInboxBeforeCirculating(t *testing.T) {
	r := router.New(2, graph.Sig{}, nil)
	r.Ports[0].Send([]*packet.Packet{packet.New("already-here", 1)})
	pod := packet.NewPod(2, 0)

	pkts, dismissed := Recv(r, 0, r.Ports[0], pod)
	if dismissed || len(pkts) != 1 {
		t.Fatalf("expected the pre-existing inbox packet, got %v dismissed=%v", pkts, dismissed)
	}
}

func TestRecvCirculatesToPeer(t *testing.T) {
	r := router.New(2, graph.Sig{}, nil)
	pod := packet.NewPod(2, 0)
	pod.Stage(1, packet.New("for-peer", 2))

	got := make(chan []*packet.Packet, 1)
	go func() {
		pkts, _ := r.Suspend(r.Ports[1])
		got <- pkts
	}()
	time.Sleep(10 * time.Millisecond)

	// lane 0 has nothing of its own and nothing to self-deliver, so it
	// circulates its pod to peer 1 and then suspends itself.
	go Recv(r, 0, r.Ports[0], pod)

	select {
	case pkts := <-got:
		if len(pkts) != 1 {
			t.Fatalf("peer should have received the circulated packet, got %v", pkts)
		}
	case <-time.After(time.Second):
		t.Fatalf("circulated packet never reached the peer")
	}

	r.Dispatch(r.Ports[0], []*packet.Packet{packet.New("unblock", 0)})
}

func TestUndeferMovesDeferralsToInbox(t *testing.T) {
	r := router.New(1, graph.Sig{}, nil)
	p := r.Ports[0]
	pod := packet.NewPod(1, 0)
	pod.Defer(packet.New("stuck", 3))

	pkts, dismissed := Recv(r, 0, p, pod)
	if dismissed {
		t.Fatalf("should not be dismissed")
	}
	if len(pkts) != 1 || pkts[0].Payload != "stuck" {
		t.Fatalf("deferred packet should circulate into this worker's own inbox and come back out, got %v", pkts)
	}
}

func TestSampleReportsStatus(t *testing.T) {
	r := router.New(1, graph.Sig{}, nil)
	if Sample(r) {
		t.Fatalf("a fresh router should not signal stop")
	}
	r.Fail(codes.New(codes.CapExceeded, "over"))
	if !Sample(r) {
		t.Fatalf("router with a recorded error should signal stop")
	}
}

func TestDeadlockDetectorFiresAfterThreshold(t *testing.T) {
	r := router.New(1, graph.Sig{}, nil)
	p := r.Ports[0]

	for i := 0; i < deadlockThreshold-1; i++ {
		noteRound(r, p, false)
		if r.Status() != nil {
			t.Fatalf("deadlock fired too early, at round %d", i)
		}
	}
	noteRound(r, p, false)

	if codes.Of(r.Status()) != codes.Deadlock {
		t.Fatalf("expected a deadlock status after %d no-progress rounds, got %v", deadlockThreshold, r.Status())
	}
}

func TestNoteRoundResetsOnProgress(t *testing.T) {
	r := router.New(1, graph.Sig{}, nil)
	p := r.Ports[0]
	for i := 0; i < deadlockThreshold-1; i++ {
		noteRound(r, p, false)
	}
	noteRound(r, p, true)
	if p.NoProgress != 0 {
		t.Fatalf("NoProgress should reset to 0 after a progressing round, got %d", p.NoProgress)
	}
	if r.Status() != nil {
		t.Fatalf("no deadlock should be recorded once progress resumed")
	}
}
