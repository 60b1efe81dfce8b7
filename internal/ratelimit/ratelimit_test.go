package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_BurstThenDeadline(t *testing.T) {
	tests := []struct {
		rpm   int
		burst int
	}{
		{rpm: 300, burst: 30},
		{rpm: 30, burst: 3},
		{rpm: 5, burst: 1},
	}

	for _, tt := range tests {
		l := New(tt.rpm)
		for i := 0; i < tt.burst; i++ {
			if err := l.Wait(context.Background()); err != nil {
				t.Fatalf("New(%d): call %d within burst failed: %v", tt.rpm, i, err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		if err := l.Wait(ctx); err == nil {
			t.Errorf("New(%d): expected wait past the burst to miss a 100ms deadline", tt.rpm)
		}
		cancel()
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := New(0)
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected wait error: %v", err)
		}
	}
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(1)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}
