// Package metrics registers Prometheus instruments for the warehouse
// pipeline and the forecast API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsLoaded counts rows successfully inserted per warehouse table
	// during a reload.
	RowsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defectcast",
		Subsystem: "etl",
		Name:      "rows_loaded_total",
		Help:      "Rows loaded into warehouse tables",
	}, []string{"table"})

	// RowsDropped counts fact rows skipped because their date resolved to
	// no calendar surrogate key. A nonzero rate here means the calendar
	// horizon no longer covers the operational data.
	RowsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defectcast",
		Subsystem: "etl",
		Name:      "rows_dropped_total",
		Help:      "Fact rows dropped for unresolved calendar keys",
	}, []string{"table"})

	// ReloadDuration observes full warehouse reload wall time.
	ReloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "defectcast",
		Subsystem: "etl",
		Name:      "reload_duration_seconds",
		Help:      "Full warehouse reload duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	// ReloadRuns counts reload outcomes.
	ReloadRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defectcast",
		Subsystem: "etl",
		Name:      "reload_runs_total",
		Help:      "Warehouse reload runs by outcome",
	}, []string{"outcome"})

	// ForecastRequests counts forecast API requests by endpoint and outcome.
	ForecastRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "defectcast",
		Subsystem: "forecast",
		Name:      "requests_total",
		Help:      "Forecast API requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
)
