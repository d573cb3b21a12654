// Package observability provides the Prometheus metrics of the analytics
// service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// ReloadsTotal tracks dataset reloads by outcome
	ReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freight_dataset_reloads_total",
			Help: "Total number of dataset reloads",
		},
		[]string{"status"}, // status: success, failed
	)

	// ReloadDuration measures dataset reload duration in seconds
	ReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "freight_dataset_reload_duration_seconds",
			Help:    "Dataset reload duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	// SnapshotOrders tracks the order count of the current snapshot
	SnapshotOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "freight_snapshot_orders",
			Help: "Number of orders in the current snapshot",
		},
	)

	// QueriesTotal tracks analytics queries by endpoint and outcome
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freight_queries_total",
			Help: "Total number of analytics queries served",
		},
		[]string{"endpoint", "status"}, // status: success, error
	)

	// ExportsTotal tracks report exports by outcome
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freight_report_exports_total",
			Help: "Total number of report exports",
		},
		[]string{"status"},
	)
)
