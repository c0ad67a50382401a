// Package metrics provides Prometheus instrumentation for sofreh.
//
// It pre-defines the metrics the client actually emits — gateway traffic,
// token refreshes, cart mutations, feed activity, dashboard HTTP — and
// exposes them on the dashboard's /metrics endpoint.
//
// Wire-up in the dashboard server:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ─────────────────────────────────────────────
// Client-side domain metrics
// ─────────────────────────────────────────────

var (
	// GatewayRequests counts outgoing remote-API calls by method and final
	// status ("error" for transport failures).
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sofreh",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total outgoing remote API requests.",
		},
		[]string{"method", "status"},
	)

	// TokenRefreshes counts refresh-token exchanges by outcome:
	// success | rejected | no_token | error.
	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sofreh",
			Subsystem: "gateway",
			Name:      "token_refreshes_total",
			Help:      "Total refresh-token exchange attempts.",
		},
		[]string{"outcome"},
	)

	// CartOps counts cart store mutations by operation and backing mode.
	CartOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sofreh",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Total cart store operations.",
		},
		[]string{"op", "mode"}, // op: load|add|remove|merge, mode: anonymous|authenticated
	)

	// FeedEvents counts reservation feed intake by source and disposition.
	FeedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sofreh",
			Subsystem: "feed",
			Name:      "events_total",
			Help:      "Total reservation feed records processed.",
		},
		[]string{"source", "result"}, // source: push|poll, result: new|duplicate
	)

	// CacheHits / CacheMisses track catalog cache effectiveness.
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sofreh",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits.",
		},
		[]string{"key"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sofreh",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses.",
		},
		[]string{"key"},
	)
)

// ─────────────────────────────────────────────
// Dashboard HTTP metrics
// ─────────────────────────────────────────────

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sofreh",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of dashboard HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sofreh",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total dashboard HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sofreh",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Dashboard HTTP requests currently being served.",
	})
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry is the Prometheus registry used by sofreh.
// Register your own metrics against this.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		GatewayRequests,
		TokenRefreshes,
		CartOps,
		FeedEvents,
		CacheHits,
		CacheMisses,
		RequestDuration,
		RequestTotal,
		RequestInFlight,
	)
}

// Register lets you add your own prometheus.Collector to the registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// ─────────────────────────────────────────────
// HTTP middleware
// ─────────────────────────────────────────────

// responseRecorder wraps http.ResponseWriter to capture the status code.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records duration, total and in-flight for every dashboard request.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			status := strconv.Itoa(rr.status)
			RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// Handler exposes the Prometheus metrics page.
// Mount it on GET /metrics in the dashboard router.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}
