// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversation path
var (
	IntakeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_events_total",
			Help: "NLU events processed by the webhook, by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	IntakeEventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_event_duration_seconds",
			Help:    "Time spent handling one NLU event",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"outcome"},
	)

	GenerationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_generation_fallbacks_total",
			Help: "Follow-up questions served from the canned fallback",
		},
		[]string{"reason"},
	)

	ClaimsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_claims_completed_total",
			Help: "Sessions that reached COMPLETE for the first time",
		},
	)

	ReplayHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_replay_hits_total",
			Help: "Redelivered NLU events answered from the reply cache",
		},
	)
)

// Workflow workers
var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
