package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordReservation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordReservation(OutcomeCreated)
	m.RecordReservation(OutcomeCreated)
	m.RecordReservation(OutcomeSlotTaken)

	if got := testutil.ToFloat64(m.reservations.WithLabelValues(OutcomeCreated)); got != 2 {
		t.Errorf("created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.reservations.WithLabelValues(OutcomeSlotTaken)); got != 1 {
		t.Errorf("slot_taken = %v, want 1", got)
	}
}

func TestMetricsRecordRequest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("/api/slots", "GET", 200, 15*time.Millisecond)
	m.RecordError("/api/book", "POST", "SLOT_TAKEN")
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/api/slots", "GET", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("/api/book", "POST", "SLOT_TAKEN")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordReservation(OutcomeCreated)
	m.RecordCacheLookup(true)
}
