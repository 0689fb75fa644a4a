// Package rate provides fixed-window request limiting keyed by client.
// It is advisory defense-in-depth against credential stuffing and TOTP
// brute force, not a security boundary: keys are per-client, never
// per-account.
package rate

import (
	"context"
	"time"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// windowStart truncates now to the current fixed window.
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.UTC().Truncate(window)
}
