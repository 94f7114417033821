// Package metrics defines Prometheus metrics for the coliving backend.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coliving_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coliving_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coliving_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "coliving_audit_queue_depth",
			Help: "Current audit worker queue depth",
		},
	)

	AuditDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coliving_audit_dropped_total",
			Help: "Audit entries dropped due to a full queue",
		},
	)

	RemindersSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coliving_reminders_sent_total",
			Help: "Payment reminders dispatched successfully",
		},
	)

	RemindersSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coliving_reminders_skipped_total",
			Help: "Payment reminders skipped by policy or idempotency checks",
		},
	)

	RemindersFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coliving_reminders_failed_total",
			Help: "Payment reminder dispatch failures",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		AuditQueueDepth, AuditDroppedTotal,
		RemindersSentTotal, RemindersSkippedTotal, RemindersFailedTotal,
	)
}
