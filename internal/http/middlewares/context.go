package middlewares

import (
	"context"

	"github.com/hknclub/budgethq/internal/jwt"
)

type ctxKey int

const (
	claimsKey ctxKey = iota
	requestIDKey
)

func WithClaims(ctx context.Context, c *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFrom returns the session claims placed by RequireSession, or
// nil on unauthenticated requests.
func ClaimsFrom(ctx context.Context) *jwt.Claims {
	c, _ := ctx.Value(claimsKey).(*jwt.Claims)
	return c
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
