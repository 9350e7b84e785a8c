package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/librarydb/librarydb/internal/metrics"
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

	writeMetric(w, "librarydb_borrows_created_total %d\n", snap.BorrowsCreated)
	writeLabeled(w, "librarydb_borrows_rejected_total", "reason", snap.BorrowsRejected)
	writeMetric(w, "librarydb_borrow_duration_seconds_count %d\n", snap.BorrowDurationCount)
	writeMetric(w, "librarydb_borrow_duration_seconds_sum %.6f\n", float64(snap.BorrowDurationTotalNs)/1e9)

	writeLabeled(w, "librarydb_user_fields_updated_total", "field", snap.UserFieldsUpdated)
	writeMetric(w, "librarydb_users_deleted_total %d\n", snap.UsersDeleted)

	writeLabeled(w, "librarydb_mini_searches_total", "kind", snap.MiniSearches)
}

// writeLabeled writes one sample per label value, sorted for stable output.
func writeLabeled(w http.ResponseWriter, name, label string, counts map[string]uint64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, counts[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
