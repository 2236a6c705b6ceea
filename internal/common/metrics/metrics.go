// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_tasks_submitted_total",
			Help: "Total number of match tasks submitted",
		},
	)

	TasksFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_tasks_finished_total",
			Help: "Total number of match tasks that reached a terminal state",
		},
		[]string{"status"},
	)

	TaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "match_task_duration_seconds",
			Help: "Duration of match task processing in seconds",
		},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_candidates_scored_total",
			Help: "Total number of candidates scored across all tasks",
		},
	)

	MLRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_ml_requests_total",
			Help: "External model scoring attempts by outcome",
		},
		[]string{"outcome"}, // applied | fallback
	)

	StoreFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_task_store_fallbacks_total",
			Help: "Task store operations served by the in-process fallback",
		},
		[]string{"operation"},
	)

	QueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "match_task_queue_length",
			Help: "Current length of the pending task queue",
		},
	)
)
