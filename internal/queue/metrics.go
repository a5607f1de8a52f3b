package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wa",
			Name:      "outbound_jobs_total",
			Help:      "Outbound jobs processed, by outcome.",
		},
		[]string{"queue", "status"}, // status: completed, retried, dead_lettered
	)

	jobDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wa",
			Name:      "outbound_send_duration_seconds",
			Help:      "Duration of a single outbound job attempt.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"queue"},
	)

	stalledRecoveredCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wa",
			Name:      "outbound_jobs_recovered_total",
			Help:      "Stalled jobs returned to the wait list.",
		},
		[]string{"queue"},
	)
)
