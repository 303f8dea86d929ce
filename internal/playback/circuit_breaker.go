package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/metrics"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// StateClosed indicates the circuit is closed (normal operation)
	StateClosed CircuitState = iota
	// StateOpen indicates the circuit is open (blocking calls)
	StateOpen
	// StateHalfOpen indicates the circuit is letting a probe call through
	StateHalfOpen
)

// String returns the string representation of CircuitState
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen indicates the circuit breaker is open and blocking calls
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops hammering the progress backend once it keeps failing.
// After resetTimeout a single probe is let through; success closes the circuit.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time

	state           CircuitState
	failures        int
	lastFailureTime time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker with the given threshold and reset timeout
func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		state:            StateClosed,
	}
}

// Call executes fn if the circuit breaker allows it
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.CanAttempt() {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailureLocked()
		return err
	}
	cb.recordSuccessLocked()
	return nil
}

// RecordSuccess records a successful call made outside Call
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.recordSuccessLocked()
}

// RecordFailure records a failed call made outside Call
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.recordFailureLocked()
}

// recordSuccessLocked records a successful operation (must hold lock)
func (cb *CircuitBreaker) recordSuccessLocked() {
	cb.failures = 0
	if cb.state != StateClosed {
		cb.state = StateClosed
		logger.Log.Info().
			Str("breaker", cb.name).
			Msg("Circuit breaker closed")
	}
}

// recordFailureLocked records a failed operation (must hold lock)
func (cb *CircuitBreaker) recordFailureLocked() {
	cb.failures++
	cb.lastFailureTime = cb.now()

	if cb.state == StateHalfOpen || (cb.state == StateClosed && cb.failures >= cb.failureThreshold) {
		cb.state = StateOpen
		metrics.BreakerTripsTotal.WithLabelValues(cb.name).Inc()
		logger.Log.Warn().
			Str("breaker", cb.name).
			Int("failures", cb.failures).
			Dur("reset_timeout", cb.resetTimeout).
			Msg("Circuit breaker opened")
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refreshLocked()
	return cb.state
}

// refreshLocked moves Open to HalfOpen once the reset timeout has elapsed (must hold lock)
func (cb *CircuitBreaker) refreshLocked() {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailureTime) >= cb.resetTimeout {
		cb.state = StateHalfOpen
		cb.failures = 0
	}
}

// GetFailures returns the current failure count
func (cb *CircuitBreaker) GetFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset resets the circuit breaker to its initial state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.lastFailureTime = time.Time{}
}

// CanAttempt returns true if the circuit breaker allows an attempt
func (cb *CircuitBreaker) CanAttempt() bool {
	state := cb.GetState()
	return state == StateClosed || state == StateHalfOpen
}
