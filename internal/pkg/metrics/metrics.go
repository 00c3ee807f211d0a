// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "uniconsult"

var (
	// HTTPRequestDuration observes request latency by route template
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route and status code",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// BookingsTotal counts booking attempts by outcome: created, conflict, rejected, error
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consultation_bookings_total",
		Help:      "Consultation booking attempts by outcome",
	}, []string{"outcome"})

	// TransitionsTotal counts consultation state changes by target status and trigger
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consultation_transitions_total",
		Help:      "Consultation lifecycle transitions by target status and trigger",
	}, []string{"status", "trigger"})

	// StatusUpdatesTotal counts faculty availability updates by new status
	StatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "faculty_status_updates_total",
		Help:      "Faculty availability updates by status",
	}, []string{"status"})

	// LoginsTotal counts login attempts by result
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts by result",
	}, []string{"result"})

	// JobRunsTotal counts scheduled job executions by job and result
	JobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job runs by job name and result",
	}, []string{"job", "result"})

	// WebsocketClients tracks connected status feed subscribers
	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "status_feed_clients",
		Help:      "Connected faculty status feed clients",
	})
)

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
