package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/metrics"
	"github.com/hknclub/budgethq/internal/observability/logger"
	"github.com/hknclub/budgethq/internal/rate"
)

// ClientIP resolves the caller address: first X-Forwarded-For hop when
// present (the app sits behind a proxy in production), RemoteAddr host
// otherwise.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limiter's fixed-window budget
// with 429 and a Retry-After hint. Counting is keyed by client IP and
// path, so hammering /api/auth/login does not lock a client out of the
// rest of the API. Limiter backend errors fail open.
func RateLimit(l rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r) + "|" + r.URL.Path
			res, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.L().Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				metrics.RateLimited()
				secs := int(res.RetryAfter.Seconds())
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				httpx.WriteError(w, httpx.ErrTooManyAttempts)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
