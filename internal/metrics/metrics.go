package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Auth flow
	SignupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_signups_total",
			Help: "Confirmation codes issued",
		},
		[]string{"kind"}, // new|reissue
	)
	TokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Bearer tokens issued for a confirmation code",
		},
	)
	MailFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mail_delivery_failures_total",
			Help: "Confirmation code deliveries that failed",
		},
	)

	// Feedback
	FeedbackCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_created_total",
			Help: "Reviews and comments created",
		},
		[]string{"type"}, // review|comment
	)

	// Rate limiting
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"}, // client|auth
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			SignupsTotal,
			TokensIssued,
			MailFailures,
			FeedbackCreated,
			RateLimited,
		)
	})
}
