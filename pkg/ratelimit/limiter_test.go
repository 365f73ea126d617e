package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNewRateLimiterAppliesDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	if rl.rate != 10 {
		t.Fatalf("expected default rate 10, got %v", rl.rate)
	}
	if rl.burst != 20 {
		t.Fatalf("expected default burst 2x rate, got %v", rl.burst)
	}
}

func TestNewRateLimiterRejectsBurstBelowRate(t *testing.T) {
	rl := NewRateLimiter(10, 1)
	if rl.burst != 10 {
		t.Fatalf("expected burst floored at rate, got %v", rl.burst)
	}
}

func TestWaitConsumesAvailableTokenImmediately(t *testing.T) {
	rl := NewRateLimiter(10, 5)

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("expected an immediate grant from burst capacity, took %v", elapsed)
	}
}

func TestWaitBlocksUntilRefillWhenBucketEmpty(t *testing.T) {
	rl := NewRateLimiter(1, 1) // one token/sec, burst of exactly 1 token

	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 5*time.Millisecond {
		t.Fatalf("expected the second wait to block for a refill, took %v", elapsed)
	}
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	rl := NewRateLimiter(1, 1) // one token/sec, none to spare after draining

	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Fatalf("expected context deadline to abort the wait before a token refills")
	}
}
