package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_BlocksAfterMax(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	base := time.Date(2026, 3, 1, 10, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4|/api/auth/login")
		require.NoError(t, err)
		require.True(t, res.Allowed, "attempt %d", i+1)
	}
	res, err := l.Allow(ctx, "1.2.3.4|/api/auth/login")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Zero(t, res.Remaining)
	require.Positive(t, res.RetryAfter)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	res, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	require.True(t, res.Allowed)
	res, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	res, err = l.Allow(ctx, "b")
	require.NoError(t, err)
	require.True(t, res.Allowed, "a different client must not be throttled")
}

func TestMemoryLimiter_WindowRollsOver(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	base := time.Date(2026, 3, 1, 10, 0, 59, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	res, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	require.True(t, res.Allowed)
	res, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// next fixed window: counter starts fresh
	l.now = func() time.Time { return base.Add(2 * time.Second) }
	res, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
