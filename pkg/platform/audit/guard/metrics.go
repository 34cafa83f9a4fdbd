package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the persistence guard.
type Metrics struct {
	BatchesRejected     prometheus.Counter
	PersistFailures     prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics creates guard metrics registered against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BatchesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessiontrail_audit_batches_rejected_total",
			Help: "Total number of audit batches dropped because the circuit breaker was open",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessiontrail_audit_persist_failures_total",
			Help: "Total number of audit batch persistence failures",
		}),
		CircuitBreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sessiontrail_audit_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

// IncBatchesRejected increments the rejected batch counter.
func (m *Metrics) IncBatchesRejected() {
	m.BatchesRejected.Inc()
}

// IncPersistFailures increments the persist failures counter.
func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(open bool) {
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
