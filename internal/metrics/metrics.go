package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Fan-out metrics
	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_events_consumed_total",
			Help: "Total message-created events consumed",
		},
		[]string{"source", "outcome"}, // outcome: "ok", "error", "malformed"
	)

	PushesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_pushes_sent_total",
			Help: "Total push send attempts",
		},
		[]string{"status"}, // "ok" or "error"
	)

	FanoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notify_fanout_duration_seconds",
			Help:    "Time to process one message-created event",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// Unread counter metrics
	UnreadIncrements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_unread_increments_total",
			Help: "Total unread counter increments",
		},
	)

	CounterConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_counter_conflicts_total",
			Help: "Optimistic unread counter updates retried after contention",
		},
	)

	// Reaction callable
	ReactionNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_reaction_notifications_total",
			Help: "Total reaction notification sends",
		},
		[]string{"status"},
	)
)
