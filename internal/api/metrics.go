package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultguard_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vaultguard_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	passwordsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaultguard_passwords_generated_total",
		Help: "Total number of passwords generated.",
	})

	strengthChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultguard_strength_checks_total",
		Help: "Total number of strength checks by label.",
	}, []string{"label"})

	auditsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultguard_audits_total",
		Help: "Total number of vault audits by risk label.",
	}, []string{"risk_label"})

	auditsStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vaultguard_audits_stored",
		Help: "Number of audit records in storage.",
	})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, passwordsGenerated, strengthChecks, auditsTotal, auditsStored)
}

// MetricsHandler returns the Prometheus metrics HTTP handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// metricsMiddleware records request metrics keyed by route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rr, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := strconv.Itoa(rr.statusCode)
		requestsTotal.WithLabelValues(r.Method, path, status).Inc()
		requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
