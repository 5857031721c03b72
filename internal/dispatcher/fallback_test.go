package dispatcher

import (
	"context"
	"testing"
	"time"
)

func TestMemoryFallbackCooldownWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	fb := NewMemoryFallbackClock(60*time.Second, clock)
	ctx := context.Background()

	if fb.Active(ctx) {
		t.Fatal("fresh store must not be active")
	}

	fb.Trip(ctx)
	if !fb.Active(ctx) {
		t.Fatal("expected active cool-down after trip")
	}

	now = now.Add(59 * time.Second)
	if !fb.Active(ctx) {
		t.Error("cool-down expired early")
	}

	now = now.Add(2 * time.Second)
	if fb.Active(ctx) {
		t.Error("cool-down should have expired")
	}
}

func TestMemoryFallbackClear(t *testing.T) {
	fb := NewMemoryFallback(time.Hour)
	ctx := context.Background()
	fb.Trip(ctx)
	fb.Clear(ctx)
	if fb.Active(ctx) {
		t.Error("expected inactive after clear")
	}
}
