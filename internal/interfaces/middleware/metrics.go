package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ContextKeyEndpoint is set by handlers to the name of the endpoint they served
const ContextKeyEndpoint = "endpoint"

// Unmatched labels requests that did not resolve to an endpoint
const Unmatched = "unmatched"

// Metrics collects per-endpoint request statistics on its own registry
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noisier_requests_total",
				Help: "Requests served, by endpoint, method and status",
			},
			[]string{"endpoint", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "noisier_request_duration_seconds",
				Help:    "Request latency by endpoint",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "noisier_requests_in_flight",
			Help: "Requests currently being served",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

// Middleware records every request under the endpoint name the handler set
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		c.Next()

		endpoint := c.GetString(ContextKeyEndpoint)
		if endpoint == "" {
			endpoint = Unmatched
		}
		m.requests.WithLabelValues(endpoint, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the collected metrics
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
