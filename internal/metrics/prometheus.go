package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "accounts"

// PrometheusRecorder implements Recorder on a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	usersCreated  prometheus.Counter
	usersUpdated  prometheus.Counter
	logins        *prometheus.CounterVec
	tokensIssued  prometheus.Counter
	tokensRevoked prometheus.Counter
	tokenCache    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// NewPrometheus creates a recorder with its own registry, including Go and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &PrometheusRecorder{
		registry: reg,
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Total number of registered users",
		}),
		usersUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_updated_total",
			Help:      "Total number of profile updates",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"status"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of issued tokens",
		}),
		tokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_revoked_total",
			Help:      "Total number of explicitly revoked tokens",
		}),
		tokenCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_cache_lookups_total",
			Help:      "Token cache lookups by result",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
	}

	reg.MustRegister(
		p.usersCreated, p.usersUpdated, p.logins,
		p.tokensIssued, p.tokensRevoked, p.tokenCache,
		p.httpRequests, p.httpDuration, p.httpInFlight,
	)
	return p
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncUserCreated increments the users created counter.
func (p *PrometheusRecorder) IncUserCreated() { p.usersCreated.Inc() }

// IncUserUpdated increments the users updated counter.
func (p *PrometheusRecorder) IncUserUpdated() { p.usersUpdated.Inc() }

// IncLogin increments the login counter for status.
func (p *PrometheusRecorder) IncLogin(status string) { p.logins.WithLabelValues(status).Inc() }

// IncTokenIssued increments the tokens issued counter.
func (p *PrometheusRecorder) IncTokenIssued() { p.tokensIssued.Inc() }

// IncTokenRevoked increments the tokens revoked counter.
func (p *PrometheusRecorder) IncTokenRevoked() { p.tokensRevoked.Inc() }

// IncTokenCacheHit increments the token cache hit counter.
func (p *PrometheusRecorder) IncTokenCacheHit() { p.tokenCache.WithLabelValues("hit").Inc() }

// IncTokenCacheMiss increments the token cache miss counter.
func (p *PrometheusRecorder) IncTokenCacheMiss() { p.tokenCache.WithLabelValues("miss").Inc() }

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latencies, labelled by chi route pattern.
func (p *PrometheusRecorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		p.httpInFlight.Inc()
		defer p.httpInFlight.Dec()

		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		// Use chi's route pattern if available to avoid high cardinality
		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		p.httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		p.httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

var _ Recorder = (*PrometheusRecorder)(nil)
