package jwt

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig holds the session cookie attributes. The deletion cookie
// must reuse the exact same name and flags or browsers keep the stale
// session around.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string // "", "lax", "strict", "none"
	Secure   bool
}

// parseSameSite accepts "", "lax", "strict", "none" (case-insensitive).
// Anything else falls back to Lax.
func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SessionCookie wraps a signed session token for browser delivery:
// httpOnly always, Secure and SameSite from config.
func (i *Issuer) SessionCookie(token string, exp time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     i.cfg.Cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		Secure:   i.cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(i.cfg.Cookie.SameSite),
	}
	if i.cfg.Cookie.Domain != "" {
		c.Domain = i.cfg.Cookie.Domain
	}
	return c
}

// DeletionCookie tells the user agent to drop the session cookie.
// Logout has no server-side effect beyond this.
func (i *Issuer) DeletionCookie() *http.Cookie {
	c := &http.Cookie{
		Name:     i.cfg.Cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		Secure:   i.cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(i.cfg.Cookie.SameSite),
	}
	if i.cfg.Cookie.Domain != "" {
		c.Domain = i.cfg.Cookie.Domain
	}
	return c
}

// CookieName exposes the configured name for request-side extraction.
func (i *Issuer) CookieName() string { return i.cfg.Cookie.Name }
