package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/http/middlewares"
	"github.com/hknclub/budgethq/internal/metrics"
)

// NewRouter assembles the full HTTP surface. Route groups:
// unauthenticated (/health, /metrics, auth entry points, token-in-query
// exports), and session-scoped (/api/* behind RequireSession).
func NewRouter(c *app.Container) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middlewares.RequestID(),
		middlewares.Recover(),
		middlewares.AccessLog(),
	)
	if c.GlobalLimiter != nil {
		r.Use(middlewares.RateLimit(c.GlobalLimiter))
	}

	r.Get("/health", Health(c))
	r.Method(http.MethodGet, "/metrics", metrics.Register(prometheus.DefaultRegisterer))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", NewAuth(c).Register)

		// export token travels in the query string, not the session
		NewExports(c).Register(api)

		api.Group(func(sess chi.Router) {
			sess.Use(middlewares.RequireSession(c.Issuer, c.Repo))
			NewBudgets(c).Register(sess)
			NewTransactions(c).Register(sess)
			NewEvents(c).Register(sess)
			NewDeadlines(c).Register(sess)
			NewAnalytics(c).Register(sess)
			NewAdmin(c).Register(sess)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, httpx.ErrNotFound)
	})
	return r
}
