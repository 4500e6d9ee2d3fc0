package ratelimit

import (
	"testing"
	"time"
)

func TestAllow_OnePerInterval(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(30*time.Second, 1)

	if !l.Allow("user-1") {
		t.Fatal("first event should pass")
	}
	if l.Allow("user-1") {
		t.Fatal("second event inside the interval should be rejected")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(30*time.Second, 1)

	if !l.Allow("user-1") {
		t.Fatal("first event for user-1 should pass")
	}
	if !l.Allow("user-2") {
		t.Fatal("first event for user-2 should pass")
	}
}

func TestAllow_ZeroIntervalDisablesLimiting(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(0, 1)

	for i := 0; i < 10; i++ {
		if !l.Allow("user-1") {
			t.Fatal("limiting should be disabled with zero interval")
		}
	}
}
