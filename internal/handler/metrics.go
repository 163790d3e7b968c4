package handler

import (
	"fmt"
	"net/http"

	"github.com/kontobank/kontobank/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "kontobank_registrations_total{status=\"success\"} %d\n", snap.Registrations)
	writeMetric(w, "kontobank_registrations_total{status=\"duplicate\"} %d\n", snap.RegistrationDuplicates)
	writeMetric(w, "kontobank_registrations_total{status=\"failed\"} %d\n", snap.RegistrationFailures)

	writeMetric(w, "kontobank_logins_total{status=\"success\"} %d\n", snap.Logins)
	writeMetric(w, "kontobank_logins_total{status=\"failed\"} %d\n", snap.LoginFailures)
	writeMetric(w, "kontobank_logouts_total %d\n", snap.Logouts)

	writeMetric(w, "kontobank_session_cache_hits_total %d\n", snap.SessionCacheHits)
	writeMetric(w, "kontobank_session_cache_misses_total %d\n", snap.SessionCacheMisses)
	writeMetric(w, "kontobank_sessions_swept_total %d\n", snap.SessionsSwept)

	writeMetric(w, "kontobank_deposits_total{status=\"success\"} %d\n", snap.Deposits)
	writeMetric(w, "kontobank_deposits_total{status=\"rejected\"} %d\n", snap.DepositsRejected)
	writeMetric(w, "kontobank_deposit_duration_seconds_count %d\n", snap.DepositDurationCount)
	writeMetric(w, "kontobank_deposit_duration_seconds_sum %.6f\n", float64(snap.DepositDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
