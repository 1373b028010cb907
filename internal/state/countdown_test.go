package state

import "testing"

func TestCountdownLifecycle(t *testing.T) {
	c := NewCountdown("send code")

	if c.Active() {
		t.Fatal("active before start")
	}
	if got := c.Label(); got != "send code" {
		t.Fatalf("label = %q, want original", got)
	}

	c.Start(3)
	if !c.Active() {
		t.Fatal("not active after start")
	}
	if got := c.Label(); got != "retry in 3s" {
		t.Fatalf("label = %q", got)
	}

	if !c.Tick() || c.Remaining() != 2 {
		t.Fatalf("after tick 1: remaining = %d", c.Remaining())
	}
	if !c.Tick() || c.Remaining() != 1 {
		t.Fatalf("after tick 2: remaining = %d", c.Remaining())
	}
	if c.Tick() {
		t.Fatal("tick reported running at zero")
	}

	// Back to the idle label once expired.
	if c.Active() {
		t.Fatal("active after expiry")
	}
	if got := c.Label(); got != "send code" {
		t.Fatalf("label after expiry = %q, want original", got)
	}
}

func TestCountdownTickWhenIdle(t *testing.T) {
	c := NewCountdown("send code")
	if c.Tick() {
		t.Fatal("idle tick reported running")
	}
	if c.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", c.Remaining())
	}
}
