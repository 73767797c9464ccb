// Package metrics holds the Prometheus collectors for gigflow and the gin
// middleware and handler that expose them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gigflow"

// Hire outcomes.
const (
	HireSuccess      = "success"
	HireInvalid      = "invalid_argument"
	HireNotFound     = "not_found"
	HireForbidden    = "forbidden"
	HireInvalidState = "invalid_state"
	HireError        = "error"
)

// Notification results.
const (
	NotifyDelivered = "delivered"
	NotifyOffline   = "offline"
	NotifyFailed    = "failed"
	NotifyDropped   = "dropped"
)

var (
	// HireAttempts counts hire calls by outcome.
	HireAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hire_attempts_total",
			Help:      "Hire attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// Notifications counts live-event delivery results.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Live notifications by result.",
		},
		[]string{"result"},
	)

	// PresenceOnline is the number of users with a live connection.
	PresenceOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "presence_online_users",
		Help:      "Users currently holding a live connection.",
	})

	// RequestDuration tracks HTTP latency by method, route template and status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Registry is the Prometheus registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(HireAttempts, Notifications, PresenceOnline, RequestDuration)
}

// ObserveHire records one hire attempt.
func ObserveHire(outcome string) {
	HireAttempts.WithLabelValues(outcome).Inc()
}

// ObserveNotification records one notification result.
func ObserveNotification(result string) {
	Notifications.WithLabelValues(result).Inc()
}

// Middleware records the duration of every request. The route template is
// used as the path label so ids do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes Registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
	return gin.WrapH(http.Handler(h))
}
