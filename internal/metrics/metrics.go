// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog client
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segue_catalog_requests_total",
			Help: "Catalog calls by operation and outcome (ok, not_found, unauthorized, rate_limited, unavailable)",
		},
		[]string{"op", "outcome"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "segue_catalog_request_duration_seconds",
			Help:    "Catalog call latency including retries",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "segue_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Recommendation pipeline
	StrategyCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segue_strategy_candidates_total",
			Help: "Candidates accepted into the pool per generation strategy",
		},
		[]string{"strategy"},
	)

	StrategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segue_strategy_failures_total",
			Help: "Catalog calls that failed inside a generation strategy",
		},
		[]string{"strategy"},
	)

	ExplanationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segue_explanation_fallbacks_total",
			Help: "Explanations that did not come from the preferred path, by reason",
		},
		[]string{"reason"},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segue_recommendations_total",
			Help: "Recommendation requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	FeatureJobsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "segue_feature_jobs_dropped_total",
			Help: "Audio feature lookups dropped because the worker queue was full",
		},
	)

	// HTTP surface
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segue_api_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "segue_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"method", "route"},
	)
)
