package buffer

import (
	"fmt"
	"testing"

	"sessiontrail/internal/telemetry/metrics"
	"sessiontrail/internal/telemetry/models"
)

// BenchmarkAdd measures single-threaded append throughput on one key
func BenchmarkAdd(b *testing.B) {
	buf := New[models.ServerEntry](metrics.OriginServer)
	entry := models.ServerEntry{Method: "GET", Endpoint: "/bench"}

	for b.Loop() {
		buf.Add("bench-session", entry)
	}
}

// BenchmarkAdd_Parallel measures contended append throughput on one key
func BenchmarkAdd_Parallel(b *testing.B) {
	buf := New[models.ServerEntry](metrics.OriginServer)
	entry := models.ServerEntry{Method: "GET", Endpoint: "/bench"}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf.Add("bench-session", entry)
		}
	})
}

// BenchmarkAdd_HighCardinality measures append throughput across many sessions
func BenchmarkAdd_HighCardinality(b *testing.B) {
	buf := New[models.ServerEntry](metrics.OriginServer)
	entry := models.ServerEntry{Method: "POST", Endpoint: "/bench"}

	for i := 0; b.Loop(); i++ {
		buf.Add(fmt.Sprintf("session-%d", i%10000), entry)
	}
}

// BenchmarkDrainAll measures a full drain of a populated buffer
func BenchmarkDrainAll(b *testing.B) {
	buf := New[models.ServerEntry](metrics.OriginServer)
	entry := models.ServerEntry{Method: "GET", Endpoint: "/bench"}

	for b.Loop() {
		b.StopTimer()
		for i := range 1000 {
			buf.Add(fmt.Sprintf("session-%d", i%100), entry)
		}
		b.StartTimer()
		buf.DrainAll()
	}
}
