package request

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests chi could not route, so scanners hitting
// random paths share one series.
const unmatchedRoute = "unmatched"

// Metrics holds per-route HTTP collectors. Routes are chi patterns, never raw
// paths, and statuses are collapsed to their class.
type Metrics struct {
	Duration  *prometheus.HistogramVec
	Responses *prometheus.CounterVec
}

// NewMetrics registers with the default registry. Call it once per process.
func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatepass_http_request_duration_seconds",
			Help:    "HTTP request latency, labeled by method and chi route pattern",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15, 30},
		}, []string{"method", "route"}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_http_responses_total",
			Help: "HTTP responses, labeled by method, chi route pattern and status class (2xx, 4xx, 5xx)",
		}, []string{"method", "route", "class"}),
	}
}

func (m *Metrics) observe(method, route string, status int, elapsed time.Duration) {
	m.Duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.Responses.WithLabelValues(method, route, statusClass(status)).Inc()
}

// LatencyMiddleware records duration and status class per route. It reads the
// pattern after the handler runs, when chi has finished matching.
func LatencyMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			m.observe(r.Method, routePattern(r), wrapped.statusCode, time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
