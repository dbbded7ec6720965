package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLag(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.ObserveLag(150*time.Millisecond, true)
	if got := testutil.ToFloat64(c.schedulerLag); got != 0.15 {
		t.Errorf("scheduler_lag_seconds = %f, want 0.15", got)
	}
	if got := testutil.ToFloat64(c.admissionShedding); got != 1 {
		t.Errorf("admission_shedding = %f, want 1", got)
	}

	c.ObserveLag(5*time.Millisecond, false)
	if got := testutil.ToFloat64(c.admissionShedding); got != 0 {
		t.Errorf("admission_shedding after recovery = %f, want 0", got)
	}
}

func TestObserveProbe(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.ObserveProbe(true)
	c.ObserveProbe(true)
	c.ObserveProbe(false)

	if got := testutil.ToFloat64(c.probesTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok probes = %f, want 2", got)
	}
	if got := testutil.ToFloat64(c.probesTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed probes = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.storeHealthy); got != 0 {
		t.Errorf("store_healthy after failed probe = %f, want 0", got)
	}
}

func TestWriteAndRejectionCounters(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.ObserveWrite(true)
	c.ObserveWrite(false)
	c.IncRejected()
	c.AddPruned(7)

	if got := testutil.ToFloat64(c.observationWrites.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok writes = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.observationWrites.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed writes = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.rejectedTotal); got != 1 {
		t.Errorf("rejections = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.prunedRecordsTotal); got != 7 {
		t.Errorf("pruned = %f, want 7", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())
	c.IncRejected()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "test_admission_rejected_total 1") {
		t.Errorf("exposition missing rejection counter:\n%s", rec.Body.String())
	}
}
