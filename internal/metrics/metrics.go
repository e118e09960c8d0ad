// Package metrics exposes prometheus instrumentation for estimation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EstimatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lakehouse_cost_estimates_total",
			Help: "Total number of full recalculation passes",
		},
		[]string{"source"},
	)

	EstimateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lakehouse_cost_estimate_duration_seconds",
			Help:    "Time taken by one recalculation pass",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)

	RateLookupMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lakehouse_cost_rate_lookup_misses_total",
			Help: "Rate lookups that fell back to a zero rate",
		},
		[]string{"category"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lakehouse_cost_active_sessions",
			Help: "Number of workload sessions held in memory",
		},
	)

	CatalogEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lakehouse_cost_catalog_entries",
			Help: "Rate entries loaded per category",
		},
		[]string{"category"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lakehouse_cost_http_requests_total",
			Help: "HTTP requests served, by route template and status code",
		},
		[]string{"route", "method", "code"},
	)

	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lakehouse_cost_exports_total",
			Help: "Reports rendered, by output format",
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(
		EstimatesTotal,
		EstimateDuration,
		RateLookupMisses,
		ActiveSessions,
		CatalogEntries,
		HTTPRequests,
		ExportsTotal,
	)
}
