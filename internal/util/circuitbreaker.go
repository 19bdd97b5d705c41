package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"
	CircuitStateOpen     CircuitState = "OPEN"
	CircuitStateHalfOpen CircuitState = "HALF_OPEN"
)

func (s CircuitState) String() string {
	return string(s)
}

// CircuitBreaker stops calls to an upstream after consecutive failures and
// lets a single probe through once the cooldown has elapsed.
type CircuitBreaker struct {
	state            CircuitState
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	nextRetryTime    time.Time
	now              func() time.Time
	name             string
	logger           *zap.Logger
	mu               sync.Mutex
}

// NewCircuitBreaker creates a closed breaker. A threshold below one disables it.
func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		state:            CircuitStateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		name:             name,
		logger:           logger,
	}
}

// State returns the current circuit state, moving OPEN to HALF_OPEN once
// the cooldown is over.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

// CanExecute reports whether a call may go through.
func (cb *CircuitBreaker) CanExecute() bool {
	if cb == nil || cb.failureThreshold < 1 {
		return true
	}
	return cb.State() != CircuitStateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refresh()
	if cb.state != CircuitStateClosed {
		cb.logger.Info("Circuit breaker: upstream recovered", zap.String("breaker", cb.name))
		cb.transitionTo(CircuitStateClosed)
	}
	cb.failureCount = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	if cb == nil || cb.failureThreshold < 1 {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refresh()
	cb.failureCount++

	switch {
	case cb.state == CircuitStateHalfOpen:
		cb.logger.Warn("Circuit breaker: probe failed, reopening", zap.String("breaker", cb.name))
		cb.open()
	case cb.state == CircuitStateClosed && cb.failureCount >= cb.failureThreshold:
		cb.logger.Warn("Circuit breaker: threshold reached, opening",
			zap.String("breaker", cb.name),
			zap.Int("threshold", cb.failureThreshold),
			zap.Duration("cooldown", cb.resetTimeout),
		)
		cb.open()
	}
}

// open must be called with cb.mu held.
func (cb *CircuitBreaker) open() {
	cb.nextRetryTime = cb.now().Add(cb.resetTimeout)
	cb.transitionTo(CircuitStateOpen)
}

// refresh must be called with cb.mu held.
func (cb *CircuitBreaker) refresh() {
	if cb.state == CircuitStateOpen && !cb.now().Before(cb.nextRetryTime) {
		cb.transitionTo(CircuitStateHalfOpen)
	}
}

// transitionTo must be called with cb.mu held.
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState

	cb.logger.Debug("Circuit breaker: state transition",
		zap.String("breaker", cb.name),
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
	)
}

// CircuitBreakerStatus is a point-in-time view of the breaker.
type CircuitBreakerStatus struct {
	State         CircuitState
	FailureCount  int
	NextRetryTime *time.Time
}

func (cb *CircuitBreaker) Status() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()

	status := CircuitBreakerStatus{State: cb.state, FailureCount: cb.failureCount}
	if cb.state == CircuitStateOpen {
		next := cb.nextRetryTime
		status.NextRetryTime = &next
	}
	return status
}
