// Package metrics defines Prometheus metrics for paddock.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paddock_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paddock_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	ActiveRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "paddock_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	ModerationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paddock_moderation_actions_total",
			Help: "Committed moderation actions by audit action",
		},
		[]string{"action"},
	)

	EmailCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paddock_email_cache_lookups_total",
			Help: "Caller email cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ActiveRequests,
		ModerationActions, EmailCacheLookups,
	)
}
