package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
)

// Health reports liveness plus a bounded storage ping.
func Health(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.Repo.Ping(ctx); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded", "storage": "down",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok", "storage": "up",
		})
	}
}
