package middlewares

import (
	"net/http"

	httpx "github.com/hknclub/budgethq/internal/http"
)

// RequireRole gates a route to the given roles. It must run inside
// RequireSession; a missing session is treated as unauthenticated, not
// forbidden.
func RequireRole(roles ...string) Middleware {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFrom(r.Context())
			if claims == nil {
				httpx.WriteError(w, httpx.ErrUnauthenticated)
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				httpx.WriteError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
