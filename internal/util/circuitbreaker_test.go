package util

import (
	"testing"
	"time"
)

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("cdn", 3, 30*time.Second, nil)
	cb.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
	}
	if !cb.CanExecute() {
		t.Fatalf("breaker opened below threshold")
	}

	cb.RecordFailure()
	if cb.CanExecute() {
		t.Fatalf("breaker should be open after 3 failures")
	}
	if st := cb.Status(); st.NextRetryTime == nil || !st.NextRetryTime.Equal(now.Add(30*time.Second)) {
		t.Fatalf("unexpected status %+v", st)
	}

	now = now.Add(30 * time.Second)
	if got := cb.State(); got != CircuitStateHalfOpen {
		t.Fatalf("State() = %s, want HALF_OPEN", got)
	}

	cb.RecordFailure()
	if cb.State() != CircuitStateOpen {
		t.Fatalf("failed probe should reopen")
	}

	now = now.Add(30 * time.Second)
	cb.RecordSuccess()
	if cb.State() != CircuitStateClosed || cb.Status().FailureCount != 0 {
		t.Fatalf("successful probe should close: %+v", cb.Status())
	}
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("cdn", 2, time.Minute, nil)
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	if !cb.CanExecute() {
		t.Fatalf("failures are not consecutive, breaker must stay closed")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("cdn", 0, time.Minute, nil)
	for i := 0; i < 10; i++ {
		cb.RecordFailure()
	}
	if !cb.CanExecute() {
		t.Fatalf("zero threshold disables the breaker")
	}

	var nilBreaker *CircuitBreaker
	if !nilBreaker.CanExecute() {
		t.Fatalf("nil breaker must allow calls")
	}
}
