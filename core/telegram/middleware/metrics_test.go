package middleware

import (
	"context"
	"testing"
)

func TestCountersTravelThroughContext(t *testing.T) {
	ctr := &Counters{}
	ctx := WithCounters(context.Background(), ctr)

	CountersFrom(ctx).Add(true)
	CountersFrom(ctx).Add(false)

	if ctr.Messages != 2 {
		t.Fatalf("messages = %d, want 2", ctr.Messages)
	}
	if !ctr.Keyboard {
		t.Fatal("keyboard flag was not recorded")
	}
}

func TestCountersFromBareContext(t *testing.T) {
	if ctr := CountersFrom(context.Background()); ctr != nil {
		t.Fatalf("expected nil counters, got %+v", ctr)
	}
	// Sends outside a handler must not panic.
	CountersFrom(context.Background()).Add(true)
}
