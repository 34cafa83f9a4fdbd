package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Origin label values for the two action buffers.
const (
	OriginBrowser = "browser"
	OriginServer  = "server"
)

// Flush outcome label values.
const (
	OutcomePersisted     = "persisted"
	OutcomeEmpty         = "empty"
	OutcomeSerialization = "serialization_failed"
	OutcomePersistence   = "persistence_failed"
)

// Metrics holds Prometheus metrics for session telemetry buffering and flushing.
type Metrics struct {
	EntriesBuffered       *prometheus.CounterVec
	EntriesRejected       *prometheus.CounterVec
	EntriesDrained        *prometheus.CounterVec
	SnapshotsStored       prometheus.Counter
	Flushes               *prometheus.CounterVec
	FlushDuration         *prometheus.HistogramVec
	RecordsPersisted      prometheus.Counter
	RecordsDropped        prometheus.Counter
	SerializationFailures prometheus.Counter
}

// New creates telemetry metrics registered against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EntriesBuffered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiontrail_entries_buffered_total",
			Help: "Total number of entries appended to a session action buffer",
		}, []string{"origin"}),
		EntriesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiontrail_entries_rejected_total",
			Help: "Total number of add calls ignored because of a blank session or empty entry",
		}, []string{"origin"}),
		EntriesDrained: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiontrail_entries_drained_total",
			Help: "Total number of entries removed from a session action buffer by a drain",
		}, []string{"origin"}),
		SnapshotsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessiontrail_snapshots_stored_total",
			Help: "Total number of client snapshots accepted (first write per session)",
		}),
		Flushes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sessiontrail_flushes_total",
			Help: "Total number of flush calls by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		FlushDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sessiontrail_flush_duration_seconds",
			Help:    "Duration of flush calls including persistence",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		RecordsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessiontrail_records_persisted_total",
			Help: "Total number of audit records handed to persistence successfully",
		}),
		RecordsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessiontrail_flush_dropped_records_total",
			Help: "Total number of drained keys lost because their flush call failed",
		}),
		SerializationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sessiontrail_serialization_failures_total",
			Help: "Total number of audit contexts that could not be serialized",
		}),
	}
}

// IncBuffered increments the buffered counter for origin.
func (m *Metrics) IncBuffered(origin string) {
	m.EntriesBuffered.WithLabelValues(origin).Inc()
}

// IncRejected increments the rejected counter for origin.
func (m *Metrics) IncRejected(origin string) {
	m.EntriesRejected.WithLabelValues(origin).Inc()
}

// AddDrained adds n drained entries for origin.
func (m *Metrics) AddDrained(origin string, n int) {
	m.EntriesDrained.WithLabelValues(origin).Add(float64(n))
}

// IncSnapshotsStored increments the stored snapshot counter.
func (m *Metrics) IncSnapshotsStored() {
	m.SnapshotsStored.Inc()
}

// ObserveFlush records the outcome and duration of one flush call.
func (m *Metrics) ObserveFlush(trigger, outcome string, seconds float64) {
	m.Flushes.WithLabelValues(trigger, outcome).Inc()
	m.FlushDuration.WithLabelValues(trigger).Observe(seconds)
}

// AddPersisted adds n persisted records.
func (m *Metrics) AddPersisted(n int) {
	m.RecordsPersisted.Add(float64(n))
}

// AddDropped adds n records lost to a failed flush.
func (m *Metrics) AddDropped(n int) {
	m.RecordsDropped.Add(float64(n))
}

// IncSerializationFailures increments the serialization failure counter.
func (m *Metrics) IncSerializationFailures() {
	m.SerializationFailures.Inc()
}
