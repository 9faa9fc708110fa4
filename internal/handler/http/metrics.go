package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the gateway's request instrumentation on a private registry,
// so tests can build handlers without colliding on the global one.
type metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survey_console",
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "survey_console",
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(m.requests, m.duration)

	return m
}

func (h *Handler) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lw := &responseWriter{ResponseWriter: w}

		start := time.Now()
		next.ServeHTTP(lw, r)
		elapsed := time.Since(start)

		// The route pattern is only known after routing, so labels are
		// resolved once the handler returns.
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		h.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(lw.status)).Inc()
		h.metrics.duration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
	})
}
