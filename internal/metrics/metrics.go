// Package metrics exposes Prometheus counters for the HTTP surface and the
// renewal sweep.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	SweepRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "license_sweep_runs_total",
		Help: "Total number of renewal sweep executions.",
	})

	SweepErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "license_sweep_errors_total",
		Help: "Total number of renewal sweep executions that failed.",
	})

	LicensesRenewedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "licenses_renewed_total",
		Help: "Total number of licenses extended by the renewal sweep.",
	})

	InvitationEmailsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invitation_emails_total",
		Help: "Total number of invitation notifications handed to the notifier.",
	})
)

// Init registers all collectors with the default registry.
func Init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		SweepRunsTotal,
		SweepErrorsTotal,
		LicensesRenewedTotal,
		InvitationEmailsTotal,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Instrument records request counts and latencies per route.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
