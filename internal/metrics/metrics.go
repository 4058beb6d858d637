package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess       = "success"
	OutcomeCached        = "cached"
	OutcomeMissingKey    = "missing_key"
	OutcomeUpstreamError = "upstream_error"
)

// Metrics groups the collectors the service exports. Each instance owns
// its registry so tests and serverless cold starts do not collide.
type Metrics struct {
	registry         *prometheus.Registry
	analysesTotal    *prometheus.CounterVec
	replyShapesTotal *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aeo_analyses_total",
				Help: "Analyze requests that reached the upstream stage, by outcome.",
			},
			[]string{"provider", "outcome"},
		),
		replyShapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aeo_reply_shapes_total",
				Help: "Normalized upstream replies by detected shape.",
			},
			[]string{"shape"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aeo_upstream_duration_seconds",
				Help:    "Duration of upstream model calls.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"provider"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aeo_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"route", "method", "code"},
		),
	}
	m.registry.MustRegister(m.analysesTotal, m.replyShapesTotal, m.upstreamDuration, m.httpRequests)
	return m
}

func (m *Metrics) ObserveAnalysis(provider, outcome string) {
	m.analysesTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObserveShape(shape string) {
	m.replyShapesTotal.WithLabelValues(shape).Inc()
}

func (m *Metrics) ObserveUpstream(provider string, d time.Duration) {
	m.upstreamDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// Middleware counts every request by matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
