package engine

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/metrics"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	// CircuitClosed means cycles run normally
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen means cycles are resuming after cooldown
	CircuitHalfOpen
	// CircuitOpen means cycles are halted
	CircuitOpen
)

// String returns string representation of circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig defines circuit breaker thresholds
type CircuitBreakerConfig struct {
	MaxFailureCount   int
	FailureTimeWindow time.Duration
	CooldownPeriod    time.Duration
}

// DefaultCircuitBreakerConfig returns the thresholds used in production
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailureCount:   5,
		FailureTimeWindow: 5 * time.Minute,
		CooldownPeriod:    10 * time.Minute,
	}
}

// CircuitBreaker halts refresh cycles after repeated infrastructure
// failures. Only infrastructure errors count: gate rejections and absent
// sources are normal operation and never trip it.
type CircuitBreaker struct {
	config          CircuitBreakerConfig
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	openedAt        time.Time
	mu              sync.Mutex
	logger          *logrus.Logger
	now             func() time.Time
}

// NewCircuitBreaker creates a circuit breaker with the given thresholds
func NewCircuitBreaker(config CircuitBreakerConfig, logger *logrus.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		state:  CircuitClosed,
		logger: logger,
		now:    time.Now,
	}
}

// Allow reports whether a cycle may run. An open circuit transitions to
// half-open once the cooldown has passed, letting one cycle probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) > cb.config.CooldownPeriod {
		cb.state = CircuitHalfOpen
		if cb.logger != nil {
			cb.logger.Info("Circuit breaker entering half-open state after cooldown")
		}
	}

	return cb.state != CircuitOpen
}

// RecordFailure counts an infrastructure failure and opens the circuit
// when the threshold is exceeded within the time window
func (cb *CircuitBreaker) RecordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	if now.Sub(cb.lastFailureTime) > cb.config.FailureTimeWindow {
		cb.failureCount = 0
	}
	cb.failureCount++
	cb.lastFailureTime = now

	if cb.logger != nil {
		cb.logger.WithFields(logrus.Fields{
			"failure_count": cb.failureCount,
			"max_allowed":   cb.config.MaxFailureCount,
			"error":         err.Error(),
		}).Warn("Cycle failure recorded")
	}

	// A failure during the half-open probe re-opens immediately
	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.config.MaxFailureCount {
		cb.tripLocked()
	}
}

// RecordSuccess resets the failure count and closes a half-open circuit
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	if cb.state == CircuitHalfOpen {
		cb.state = CircuitClosed
		if cb.logger != nil {
			cb.logger.Info("Circuit breaker closed after successful probe cycle")
		}
	}
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset manually closes the circuit and clears the failure count
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = CircuitClosed
	cb.failureCount = 0

	if cb.logger != nil {
		cb.logger.WithFields(logrus.Fields{
			"old_state": oldState.String(),
			"new_state": cb.state.String(),
		}).Info("Circuit breaker manually reset")
	}
}

func (cb *CircuitBreaker) tripLocked() {
	if cb.state == CircuitOpen {
		return
	}

	oldState := cb.state
	cb.state = CircuitOpen
	cb.openedAt = cb.now()
	metrics.RecordCircuitBreakerTrip()

	if cb.logger != nil {
		cb.logger.WithFields(logrus.Fields{
			"old_state":       oldState.String(),
			"failure_count":   cb.failureCount,
			"cooldown_period": cb.config.CooldownPeriod,
		}).Error("Circuit breaker tripped, cycles halted")
	}
}
