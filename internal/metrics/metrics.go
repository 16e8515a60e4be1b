// Package metrics exposes Prometheus collectors for the recommendation
// pipeline. All collectors are registered via promauto at init time and
// served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheRequests counts result-cache lookups by outcome ("hit"/"miss").
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_requests_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// GenerationDuration measures full pipeline latency on cache misses.
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_generation_duration_seconds",
			Help:    "Duration of full recommendation generation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// ScorerDuration measures per-source scorer latency.
	ScorerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_scorer_duration_seconds",
			Help:    "Duration of individual scorers",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
		[]string{"source"},
	)

	// ScorerFailures counts scorers that degraded to zero candidates.
	ScorerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_scorer_failures_total",
			Help: "Scorer errors that degraded to an empty contribution",
		},
		[]string{"source"},
	)

	// FeedbackEvents counts interaction feedback by action.
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_feedback_events_total",
			Help: "Tracked feedback events by action",
		},
		[]string{"action"},
	)
)
