package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutorRetriesRetryableErrors(t *testing.T) {
	executor := NewExecutor(Policy{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	})

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error) Verdict {
		return Verdict{Retryable: true, RecordFailure: true}
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecutorStopsOnNonRetryable(t *testing.T) {
	executor := NewExecutor(Policy{
		RetryMaxAttempts:    5,
		RetryInitialBackoff: time.Millisecond,
		BreakerEnabled:      false,
	})

	calls := 0
	wantErr := errors.New("permanent")
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return wantErr
	}, func(error) Verdict {
		return Verdict{Retryable: false, RecordFailure: true}
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("Execute() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
}

func TestSingleAttemptPolicyNeverRetries(t *testing.T) {
	executor := NewExecutor(SingleAttemptPolicy())

	calls := 0
	_ = executor.Execute(context.Background(), "hosted_generate", func(context.Context) error {
		calls++
		return errors.New("http 500")
	}, func(error) Verdict {
		return Verdict{Retryable: true, RecordFailure: true}
	})

	if calls != 1 {
		t.Fatalf("expected single attempt, got %d", calls)
	}
}

func TestBreakerOpensAfterFailureRatio(t *testing.T) {
	executor := NewExecutor(Policy{
		RetryMaxAttempts:    1,
		RetryInitialBackoff: time.Millisecond,
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
	})

	fail := func(context.Context) error { return errors.New("down") }
	classify := func(error) Verdict { return Verdict{RecordFailure: true} }

	for i := 0; i < 2; i++ {
		_ = executor.Execute(context.Background(), "backend", fail, classify)
	}

	err := executor.Execute(context.Background(), "backend", fail, classify)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}
