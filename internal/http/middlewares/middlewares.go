// Package middlewares carries the request-scoped plumbing: request IDs,
// access logging, session auth, role checks and rate limiting.
package middlewares

import "net/http"

type Middleware func(http.Handler) http.Handler
