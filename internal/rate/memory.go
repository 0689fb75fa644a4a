package rate

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter counts hits per key in the current fixed window using an
// in-process cache. Suitable for single-node deployments and tests; use
// the Redis limiter when running more than one replica.
type MemoryLimiter struct {
	mu     sync.Mutex
	c      *gocache.Cache
	max    int64
	window time.Duration

	// test hook; defaults to time.Now
	now func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()
	win := windowStart(now, l.window)
	ck := fmt.Sprintf("%s:%d", key, win.Unix())

	l.mu.Lock()
	defer l.mu.Unlock()

	ttl := win.Add(l.window).Sub(now)
	_ = l.c.Add(ck, int64(0), ttl) // no-op when the window entry exists
	hits, err := l.c.IncrementInt64(ck, 1)
	if err != nil {
		// the entry expired between Add and Increment; start over
		l.c.Set(ck, int64(1), ttl)
		hits = 1
	}

	res := Result{Allowed: hits <= l.max, Remaining: l.max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}
