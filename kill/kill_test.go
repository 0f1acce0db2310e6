package kill

import "testing"

func TestFireFirstWriterWins(t *testing.T) {
	var k int32
	if !Fire(&k) {
		t.Fatalf("first Fire should succeed")
	}
	if Fire(&k) {
		t.Fatalf("second Fire should be a no-op")
	}
	if !KilledByUser(&k) {
		t.Fatalf("k should be killed by user")
	}
	if KilledInternally(&k) {
		t.Fatalf("k should not also read as internally killed")
	}
}

func TestFireInternalDoesNotOverrideUserKill(t *testing.T) {
	var k int32
	Fire(&k)
	if FireInternal(&k) {
		t.Fatalf("FireInternal should not override an existing user kill")
	}
	if !KilledByUser(&k) {
		t.Fatalf("user kill should still be in effect")
	}
}

func TestSwitchFireWhileDetachedLatches(t *testing.T) {
	s := New()
	s.Fire()

	var k int32
	s.Enable(&k)
	if !Killed(&k) {
		t.Fatalf("a pending Fire should apply immediately on Enable")
	}
}

func TestSwitchFireWhileEnabled(t *testing.T) {
	s := New()
	var k int32
	s.Enable(&k)
	s.Fire()
	if !KilledByUser(&k) {
		t.Fatalf("Fire on an enabled switch should set the bound field")
	}
}

func TestSwitchDisableSeversBinding(t *testing.T) {
	s := New()
	var k1 int32
	s.Enable(&k1)
	s.Disable()
	s.Fire()
	if Killed(&k1) {
		t.Fatalf("Fire after Disable must not affect the previously bound field")
	}

	var k2 int32
	s.Enable(&k2)
	if !Killed(&k2) {
		t.Fatalf("the latched Fire from while detached should apply to the next Enable")
	}
}
