package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultProcessed         = "processed"
	ResultDuplicate         = "duplicate"
	ResultNoMessage         = "no_message"
	ResultLocked            = "locked"
	ResultVerify            = "verify"
	ResultError             = "error"
	ResultSignatureRejected = "signature_rejected"
)

var (
	webhookEventsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wa",
			Name:      "webhook_events_total",
			Help:      "Inbound webhook deliveries by result.",
		},
		[]string{"result"},
	)

	notificationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wa",
			Name:      "notifications_total",
			Help:      "Proactive notifications by delivery path.",
		},
		[]string{"path"},
	)

	rateLimitDeniedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wa",
		Name:      "rate_limit_denied_total",
		Help:      "Hits rejected by the sliding window limiter.",
	})
)

// CountWebhook records one webhook delivery outcome.
func CountWebhook(result string) {
	webhookEventsCounter.WithLabelValues(result).Inc()
}
