package middlewares

import (
	"net/http"
	"strings"

	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/jwt"
	"github.com/hknclub/budgethq/internal/observability/logger"
	"github.com/hknclub/budgethq/internal/store/core"
	"github.com/hknclub/budgethq/internal/util/timeutil"
)

const timezoneHeader = "X-User-Timezone"

// SessionToken extracts the raw session credential: the session cookie
// when present, the Authorization bearer otherwise.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// RequireSession verifies the session token and stores its claims in
// the request context. A valid X-User-Timezone header that differs from
// the stored one is persisted as a side effect; failures there never
// fail the request.
func RequireSession(issuer *jwt.Issuer, repo core.Repository) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := SessionToken(r, issuer.CookieName())
			if raw == "" {
				httpx.WriteError(w, httpx.ErrUnauthenticated)
				return
			}
			claims, err := issuer.ParseSession(raw)
			if err != nil {
				httpx.WriteError(w, httpx.ErrUnauthenticated)
				return
			}

			if tz := r.Header.Get(timezoneHeader); tz != "" && tz != claims.Timezone && timeutil.ValidTimezone(tz) {
				if err := repo.UpdateUserTimezone(r.Context(), claims.UserID, tz); err != nil {
					logger.L().Warn("timezone update failed",
						logger.UserID(claims.UserID), logger.Err(err))
				} else {
					claims.Timezone = tz
				}
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
