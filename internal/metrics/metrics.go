// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventease_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventease_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Sessions
	SessionResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventease_session_resolutions_total",
			Help: "Session resolutions by outcome",
		},
		[]string{"outcome"}, // ok, no_token, invalid_token, unknown_user, invalid_role, lookup_error
	)

	GuardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventease_route_guard_decisions_total",
			Help: "Route guard decisions by result",
		},
		[]string{"result"}, // public, allowed, signin_redirect, home_redirect
	)

	// RSVPs
	RSVPAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventease_rsvp_attempts_total",
			Help: "RSVP create attempts by result",
		},
		[]string{"result"}, // created, full, duplicate, not_found, invalid, error
	)

	// Outbox
	OutboxDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventease_outbox_deliveries_total",
			Help: "Notification deliveries by result",
		},
		[]string{"kind", "result"},
	)

	OutboxDrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventease_outbox_drain_duration_seconds",
			Help:    "Time spent draining one outbox batch",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// TrackInFlight adjusts the in-flight gauge.
func TrackInFlight(start bool) {
	if start {
		HTTPRequestsInFlight.Inc()
		return
	}
	HTTPRequestsInFlight.Dec()
}
