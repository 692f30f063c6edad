package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForReturnsAfterDelay(t *testing.T) {
	original := after
	var waited time.Duration
	after = func(d time.Duration) <-chan time.Time {
		waited = d
		c := make(chan time.Time, 1)
		c <- time.Time{}
		return c
	}
	defer func() { after = original }()

	if err := WaitFor(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waited != 3*time.Second {
		t.Fatalf("expected a 3s wait, got %s", waited)
	}
}

func TestWaitForSkipsNonPositive(t *testing.T) {
	original := after
	after = func(time.Duration) <-chan time.Time {
		t.Fatal("timer must not be started")
		return nil
	}
	defer func() { after = original }()

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForHonoursCancellation(t *testing.T) {
	original := after
	after = func(time.Duration) <-chan time.Time { return make(chan time.Time) }
	defer func() { after = original }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
