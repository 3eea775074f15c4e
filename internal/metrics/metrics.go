package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total number of processed chat turns by resulting dialogue state",
		},
		[]string{"state"},
	)

	ChatHandoffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_handoffs_total",
			Help: "Total number of completed food/condition pairs sent to the classifier",
		},
		[]string{"outcome"},
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_classify_duration_seconds",
			Help:    "Duration of classifier hand-off in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SessionsDropped counts memories leaving the in-process store: completed, reset,
	// idle past their TTL or pushed out by capacity.
	SessionsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_dropped_total",
			Help: "Total number of conversation memories removed from the in-process session store",
		},
	)

	VocabularyEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_vocabulary_entries",
			Help: "Number of known vocabulary entries per kind",
		},
		[]string{"kind"},
	)
)
