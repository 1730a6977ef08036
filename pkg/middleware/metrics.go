package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	panelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotly_admin_http_requests_total",
			Help: "Total number of admin panel HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	panelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotly_admin_http_request_duration_seconds",
			Help:    "Admin panel HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	panelRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spotly_admin_http_requests_in_flight",
			Help: "Admin panel HTTP requests currently being served",
		},
	)
)

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// PrometheusMetrics records request count, duration, and in-flight gauge for
// every panel request, labeled by the chi route pattern so order IDs do not
// explode the cardinality.
func PrometheusMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			panelRequestsInFlight.Inc()
			defer panelRequestsInFlight.Dec()

			wrapped := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			status := strconv.Itoa(wrapped.statusCode)
			panelRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			panelRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}
