// Package metrics registers the Prometheus instruments and serves the
// /metrics handler. Auth counters are labeled by outcome only; they
// never carry usernames or client addresses.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	loginAttemptsTotal *prometheus.CounterVec
	totpChecksTotal    *prometheus.CounterVec
	rateLimitedTotal   prometheus.Counter
)

// Register initializes the instruments against the given registry
// (DefaultRegisterer when nil) and returns the /metrics handler.
func Register(reg prometheus.Registerer) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	once.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "budgethq_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "budgethq_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		loginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "budgethq_login_attempts_total",
			Help: "Login attempts by outcome (success, invalid_credentials, totp_pending).",
		}, []string{"outcome"})

		totpChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "budgethq_totp_checks_total",
			Help: "TOTP code verifications by outcome (success, failure).",
		}, []string{"outcome"})

		rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "budgethq_rate_limited_total",
			Help: "Requests rejected by the auth rate limiter.",
		})

		reg.MustRegister(httpRequestsTotal, httpRequestDuration,
			loginAttemptsTotal, totpChecksTotal, rateLimitedTotal)
	})
	return promhttp.Handler()
}

func ObserveHTTP(method, path string, status int, seconds float64) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, statusText(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

func LoginAttempt(outcome string) {
	if loginAttemptsTotal != nil {
		loginAttemptsTotal.WithLabelValues(outcome).Inc()
	}
}

func TOTPCheck(ok bool) {
	if totpChecksTotal == nil {
		return
	}
	if ok {
		totpChecksTotal.WithLabelValues("success").Inc()
	} else {
		totpChecksTotal.WithLabelValues("failure").Inc()
	}
}

func RateLimited() {
	if rateLimitedTotal != nil {
		rateLimitedTotal.Inc()
	}
}

func statusText(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
