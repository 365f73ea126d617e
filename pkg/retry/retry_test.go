package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	cfg := ConservativeConfig()
	cfg.InitialDelay = 0
	cfg.MaxDelay = 0
	return cfg
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return Temporary(errors.New("transient"))
		}
		return nil
	}, fastConfig())

	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return Permanent(errors.New("rejected"))
	}, fastConfig())

	if err == nil {
		t.Fatalf("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("expected a permanent error to stop after one attempt, got %d", attempts)
	}
}

func TestDoDefaultPolicyRetriesPlainErrors(t *testing.T) {
	attempts := 0
	cfg := fastConfig()
	cfg.MaxRetries = 2
	err := Do(context.Background(), func() error {
		attempts++
		return errors.New("unclassified failure")
	}, cfg)

	if err == nil {
		t.Fatalf("expected an error once attempts are exhausted")
	}
	if attempts != 2 {
		t.Fatalf("expected an unwrapped error to be retried up to MaxRetries, got %d attempts", attempts)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return Temporary(errors.New("transient"))
	}, fastConfig())

	if err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
	if attempts != 0 {
		t.Fatalf("expected no attempt once the context is already cancelled, got %d", attempts)
	}
}

func TestDoHonorsExplicitRetryIf(t *testing.T) {
	attempts := 0
	cfg := fastConfig()
	cfg.RetryIf = func(error) bool { return false }

	err := Do(context.Background(), func() error {
		attempts++
		return errors.New("anything")
	}, cfg)

	if err == nil {
		t.Fatalf("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("expected the custom RetryIf to veto retries, got %d attempts", attempts)
	}
}

func TestNetworkConfigAndConservativeConfigDiffer(t *testing.T) {
	nc := NetworkConfig()
	cc := ConservativeConfig()

	if nc.MaxRetries == cc.MaxRetries && nc.InitialDelay == cc.InitialDelay {
		t.Fatalf("expected NetworkConfig and ConservativeConfig to have distinct tuning")
	}
}

func TestCalculateDelayCapsAtMaxDelay(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 2 * time.Second, Multiplier: 10, JitterFactor: 0}
	cfg.validate()

	if got := cfg.calculateDelay(5); got != cfg.MaxDelay {
		t.Fatalf("expected delay capped at MaxDelay, got %v", got)
	}
}
