package packet

import "testing"

func TestPodStageAndTakeLane(t *testing.T) {
	p := NewPod(3, 0)
	a := New("a", 1)
	b := New("b", 2)
	p.Stage(1, a)
	p.Stage(1, b)

	if got := p.Lane(1); len(got) != 2 {
		t.Fatalf("Lane(1) = %v, want 2 packets", got)
	}
	taken := p.TakeLane(1)
	if len(taken) != 2 || taken[0] != a || taken[1] != b {
		t.Fatalf("unexpected TakeLane result: %v", taken)
	}
	if got := p.Lane(1); len(got) != 0 {
		t.Fatalf("lane should be empty after TakeLane, got %v", got)
	}
}

func TestPodSelfDelivery(t *testing.T) {
	p := NewPod(3, 1)
	self := New("self", 0)
	p.Stage(1, self)

	if got := p.Self(); len(got) != 1 || got[0] != self {
		t.Fatalf("Self() = %v, want [self]", got)
	}
	taken := p.TakeSelf()
	if len(taken) != 1 || taken[0] != self {
		t.Fatalf("TakeSelf() = %v, want [self]", taken)
	}
	if !p.Empty() {
		t.Fatalf("pod should be empty after taking its only lane")
	}
}

func TestPodDeferrals(t *testing.T) {
	p := NewPod(2, 0)
	if !p.Empty() {
		t.Fatalf("fresh pod should be empty")
	}
	pkt := New("stuck", 5)
	p.Defer(pkt)
	if p.Empty() {
		t.Fatalf("pod with a deferral should not be empty")
	}
	d := p.TakeDeferrals()
	if len(d) != 1 || d[0] != pkt {
		t.Fatalf("unexpected deferrals: %v", d)
	}
	if !p.Empty() {
		t.Fatalf("pod should be empty after TakeDeferrals")
	}
}

func TestSeedFlag(t *testing.T) {
	s := Seed("root", 0)
	if !s.Initial {
		t.Fatalf("Seed() must set Initial")
	}
	n := New("other", 0)
	if n.Initial {
		t.Fatalf("New() must not set Initial")
	}
}
