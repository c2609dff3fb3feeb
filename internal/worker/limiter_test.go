package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowWithinBurst(t *testing.T) {
	l := NewLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("tavily") {
			t.Errorf("Allow() = false on request %d within burst", i+1)
		}
	}
	if l.Allow("tavily") {
		t.Error("Allow() = true after burst exhausted")
	}
}

func TestLimiterPerServiceIsolation(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("tavily") {
		t.Fatal("first tavily request denied")
	}
	if l.Allow("tavily") {
		t.Error("second tavily request allowed despite burst of 1")
	}
	// A different service has its own bucket
	if !l.Allow("wikipedia") {
		t.Error("wikipedia request denied by tavily's bucket")
	}
}

func TestLimiterSetServiceRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetServiceRate("llm", 100, 10)

	for i := 0; i < 10; i++ {
		if !l.Allow("llm") {
			t.Errorf("Allow() = false on request %d with custom burst 10", i+1)
		}
	}
}

func TestLimiterWaitRespectsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow("slow") // drain the burst

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "slow"); err == nil {
		t.Error("Wait() expected error from expired context")
	}
}

func TestLimiterDefaultBurst(t *testing.T) {
	l := NewLimiter(1, 0)

	// Zero burst falls back to the default of 5
	for i := 0; i < 5; i++ {
		if !l.Allow("svc") {
			t.Errorf("Allow() = false on request %d", i+1)
		}
	}
}
