package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyEventuallySucceeds(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}
	calls := 0
	err := policy.Do(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls mismatch: %d", calls)
	}
}

func TestRetryPolicyGivesUp(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	sentinel := errors.New("down")
	calls := 0
	err := policy.Do(context.Background(), "test", func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls mismatch: %d", calls)
	}
}

func TestRetryPolicyPermanent(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, Backoff: time.Millisecond}
	sentinel := errors.New("bad input")
	calls := 0
	err := policy.Do(context.Background(), "test", func(context.Context) error {
		calls++
		return Permanent(sentinel)
	})
	if err != sentinel {
		t.Fatalf("expected unwrapped sentinel, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent error retried: %d", calls)
	}
}

func TestRetryPolicyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxRetries: 5, Backoff: time.Hour}
	err := policy.Do(ctx, "test", func(context.Context) error {
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
