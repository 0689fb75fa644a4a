package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/metrics"
	"github.com/hknclub/budgethq/internal/observability/logger"
)

// AccessLog emits one structured line per request and feeds the HTTP
// metrics. The metrics path label is the chi route pattern, never the
// raw URL, to keep cardinality bounded.
func AccessLog() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			metrics.ObserveHTTP(r.Method, pattern, ww.Status(), elapsed.Seconds())

			fields := []zap.Field{
				logger.RequestID(RequestIDFrom(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Status(ww.Status()),
				logger.Duration(elapsed),
				logger.ClientIP(ClientIP(r)),
			}
			if c := ClaimsFrom(r.Context()); c != nil {
				fields = append(fields, logger.UserID(c.UserID))
			}
			logger.L().Info("http request", fields...)
		})
	}
}

// Recover converts a handler panic into a 500 without killing the
// process.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.L().Error("panic recovered",
						logger.RequestID(RequestIDFrom(r.Context())),
						logger.Path(r.URL.Path),
						zap.Any("panic", rec),
						zap.Stack("stack"),
					)
					httpx.WriteError(w, httpx.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
