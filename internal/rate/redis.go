package rate

import (
	"context"
	"fmt"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// RedisLimiter is the distributed fixed-window variant (INCR + EXPIRE).
type RedisLimiter struct {
	client *rdb.Client
	prefix string
	max    int64
	window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	win := windowStart(time.Now(), l.window)
	rkey := fmt.Sprintf("%s%s:%d", l.prefix, key, win.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	ttl := pipe.TTL(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}
	// first hit of the window carries no expiry yet
	if incr.Val() == 1 {
		_ = l.client.Expire(ctx, rkey, l.window).Err()
		ttl = l.client.TTL(ctx, rkey)
	}

	hits := incr.Val()
	res := Result{Allowed: hits <= l.max, Remaining: l.max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = ttl.Val()
		if res.RetryAfter < 0 {
			res.RetryAfter = l.window
		}
	}
	return res, nil
}
