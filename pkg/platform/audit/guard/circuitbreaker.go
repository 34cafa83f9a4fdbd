package guard

import (
	"sync"
	"time"
)

// CircuitBreaker opens after a run of consecutive persistence failures and
// rejects batches until its cooldown elapses. After the cooldown one batch is
// let through (half-open); its outcome closes or re-opens the circuit.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	now       func() time.Time

	failures  int
	openUntil time.Time
	isOpen    bool
	probing   bool
}

// NewCircuitBreaker creates a circuit breaker.
// threshold: consecutive failures that open the circuit
// cooldown: how long the circuit stays open before a probe is allowed
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a batch may be sent to the backend.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.isOpen {
		return true
	}
	if cb.probing || cb.now().Before(cb.openUntil) {
		return false
	}
	cb.probing = true
	return true
}

// RecordSuccess closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.isOpen = false
	cb.probing = false
}

// RecordFailure counts a failure and opens the circuit at the threshold.
// A failed probe re-opens it immediately. It reports whether the circuit is open.
func (cb *CircuitBreaker) RecordFailure() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.probing || cb.failures >= cb.threshold {
		cb.isOpen = true
		cb.probing = false
		cb.openUntil = cb.now().Add(cb.cooldown)
	}
	return cb.isOpen
}

// IsOpen returns true if the circuit is currently open.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.isOpen
}

// Reset manually closes the circuit.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.isOpen = false
	cb.probing = false
}
