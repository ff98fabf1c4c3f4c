package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts personalisation operations by name.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookdna_operations_total",
			Help: "Total number of personalisation operations",
		},
		[]string{"operation"},
	)

	// OperationItems tracks the output size of each operation.
	OperationItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cookdna_operation_items",
			Help:    "Items produced per operation (feed cards, planned days, recipes)",
			Buckets: []float64{0, 1, 3, 7, 10, 20, 30, 50, 100},
		},
		[]string{"operation"},
	)

	// OperationDuration tracks operation latency.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cookdna_operation_duration_seconds",
			Help:    "Duration of personalisation operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	// MilestonesTotal counts confidence milestones reached by users.
	MilestonesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookdna_milestones_total",
			Help: "Total number of personality confidence milestones unlocked",
		},
		[]string{"milestone"},
	)

	// DriftDetectedTotal counts evaluations that found sustained drift.
	DriftDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookdna_drift_detected_total",
			Help: "Total number of drift detections by declared and observed archetype",
		},
		[]string{"declared", "observed"},
	)

	// UnassignedDaysTotal counts plan days left without a recipe.
	UnassignedDaysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cookdna_plan_unassigned_days_total",
			Help: "Total number of cook days a plan could not fill",
		},
	)
)

// ObserveOperation records one operation in the Prometheus collectors.
func ObserveOperation(operation string, items int, d time.Duration) {
	OperationsTotal.WithLabelValues(operation).Inc()
	OperationItems.WithLabelValues(operation).Observe(float64(items))
	OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordMilestone counts an unlocked confidence milestone.
func RecordMilestone(name string) {
	MilestonesTotal.WithLabelValues(name).Inc()
}

// RecordDrift counts a drift detection.
func RecordDrift(declared, observed string) {
	DriftDetectedTotal.WithLabelValues(declared, observed).Inc()
}

// RecordUnassignedDays adds plan days that had no fitting recipe.
func RecordUnassignedDays(n int) {
	if n > 0 {
		UnassignedDaysTotal.Add(float64(n))
	}
}
