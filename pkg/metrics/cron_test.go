package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCronJobMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("reservation-expiry")
	m.IncSuccess("reservation-expiry")
	m.IncFailure("reservation-expiry")
	m.ObserveDuration("reservation-expiry", 150*time.Millisecond)
	m.AddExpiredReservations(3)

	if got := testutil.ToFloat64(m.success.WithLabelValues("reservation-expiry")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("reservation-expiry")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.swept); got != 3 {
		t.Fatalf("expected 3 swept reservations, got %v", got)
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.IncSuccess("x")
	m.IncFailure("x")
	m.ObserveDuration("x", time.Second)
	m.AddExpiredReservations(1)

	empty := NewCronJobMetrics(nil)
	empty.IncSuccess("x")
	empty.AddExpiredReservations(1)
}
