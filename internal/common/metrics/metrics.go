// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_started_total",
			Help: "Total number of turn requests received",
		},
		[]string{"path"},
	)

	TurnsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_completed_total",
			Help: "Total number of turns persisted successfully",
		},
		[]string{"path"},
	)

	TurnsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_failed_total",
			Help: "Total number of failed turns by error code",
		},
		[]string{"path", "error_code"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_generation_duration_seconds",
			Help:    "Duration of model invocations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	AggregationDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fact_aggregation_degraded_total",
			Help: "Domain aggregation queries replaced by a zero-valued summary",
		},
		[]string{"domain"},
	)

	DomainQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "fact_query_duration_seconds",
			Help: "Duration of domain aggregation queries in seconds",
		},
		[]string{"domain"},
	)
)
