package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// PendingReports is the current depth of the offline submission queue.
	PendingReports = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "reportaqui",
		Subsystem: "queue",
		Name:      "pending_reports",
		Help:      "Current number of reports waiting in the offline submission queue.",
	})

	// PoisonedReports counts queued reports that exhausted their retry budget.
	PoisonedReports = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "reportaqui",
		Subsystem: "queue",
		Name:      "poisoned_reports",
		Help:      "Current number of pending reports that exhausted their sync retries.",
	})

	// SyncPassesTotal counts completed sync passes.
	SyncPassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reportaqui",
		Subsystem: "sync",
		Name:      "passes_total",
		Help:      "Total number of completed sync passes.",
	})

	// SyncReportsTotal counts per-item sync outcomes, labeled by result.
	SyncReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reportaqui",
		Subsystem: "sync",
		Name:      "reports_total",
		Help:      "Total number of per-report sync attempts, labeled by result.",
	}, []string{"result"})

	// SyncPassDurationSeconds is the wall time of one full sync pass.
	SyncPassDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reportaqui",
		Subsystem: "sync",
		Name:      "pass_duration_seconds",
		Help:      "End-to-end duration of one sync pass over all eligible pending reports.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
)

// Register installs the collectors into the default registry. Safe to call
// more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			PendingReports,
			PoisonedReports,
			SyncPassesTotal,
			SyncReportsTotal,
			SyncPassDurationSeconds,
		)
	})
}
