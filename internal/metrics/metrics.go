package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SealToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confrarias_seal_toggles_total",
		Help: "Seal toggles by resulting state",
	}, []string{"result"})

	ModerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confrarias_moderation_transitions_total",
		Help: "Effective moderation status changes",
	}, []string{"target", "from", "to"})

	TagSuggestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confrarias_tag_suggestions_total",
		Help: "Tag suggestion requests by outcome",
	}, []string{"outcome"})

	OutboxDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confrarias_outbox_deliveries_total",
		Help: "Outbox events relayed to kafka",
	}, []string{"result"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "confrarias_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
