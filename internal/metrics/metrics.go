// Package metrics exposes the service's Prometheus collectors.
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

// Checkout outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeReplayed = "replayed"
	OutcomeFailed   = "failed"
)

// Recorder owns a private registry so tests can create as many as they like.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	sessions  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	lookups   *prometheus.CounterVec
}

// New registers the collectors under namespace.
func New(namespace string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Checkout session requests by currency and outcome.",
		}, []string{"currency", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "currency_unresolved_total",
			Help:      "Destination countries priced in the base currency because no mapping exists.",
		}, []string{"country"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_lookups_total",
			Help:      "Order tracking lookups by resolution path and result.",
		}, []string{"source", "result"}),
	}
	r.registry.MustRegister(
		r.requests, r.latency, r.sessions, r.fallbacks, r.lookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Middleware records request counts and latency, labelled by the matched
// route template so path parameters do not explode cardinality.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (r *Recorder) CheckoutSession(currency, outcome string) {
	if r == nil {
		return
	}
	r.sessions.WithLabelValues(currency, outcome).Inc()
}

func (r *Recorder) CurrencyFallback(country string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(country).Inc()
}

func (r *Recorder) OrderLookup(source, result string) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(source, result).Inc()
}
