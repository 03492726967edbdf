package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline metrics
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_pipeline_runs_total",
			Help: "Total number of subtitle acquisition runs by outcome.",
		},
		[]string{"outcome"},
	)

	PipelineDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subtitle_pipeline_duration_seconds",
			Help:    "Duration of subtitle acquisition runs.",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)
)

// Resolver and session metrics
var (
	ResolverAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_resolver_attempts_total",
			Help: "Total number of download fetches by stage and validation verdict.",
		},
		[]string{"stage", "verdict"},
	)

	SessionLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_session_logins_total",
			Help: "Total number of upstream login attempts.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		PipelineRunsTotal,
		PipelineDurationSeconds,
		ResolverAttemptsTotal,
		SessionLoginsTotal,
	)
}
