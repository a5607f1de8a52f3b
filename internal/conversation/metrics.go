package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var shortcutCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "wa",
		Name:      "ai_shortcut_total",
		Help:      "Free-text messages run through extraction, by outcome.",
	},
	[]string{"outcome"}, // outcome: none, skipped, verify, completed, prefilled
)
