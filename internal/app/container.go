// Package app wires configuration into the concrete dependencies the
// HTTP layer consumes.
package app

import (
	"context"
	"fmt"

	rdb "github.com/redis/go-redis/v9"

	"github.com/hknclub/budgethq/internal/config"
	"github.com/hknclub/budgethq/internal/jwt"
	"github.com/hknclub/budgethq/internal/observability/logger"
	"github.com/hknclub/budgethq/internal/rate"
	"github.com/hknclub/budgethq/internal/store/core"
	"github.com/hknclub/budgethq/internal/store/memory"
	"github.com/hknclub/budgethq/internal/store/pg"
)

// Container owns the process-wide dependencies. Built once in the serve
// command and handed to the router; handlers never construct their own.
type Container struct {
	Cfg    *config.Config
	Repo   core.Repository
	Issuer *jwt.Issuer

	// nil when rate limiting is disabled
	AuthLimiter   rate.Limiter
	GlobalLimiter rate.Limiter

	redis *rdb.Client
}

func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Cfg: cfg}

	issuer, err := jwt.NewIssuer(jwt.Config{
		Secret:     []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.Issuer,
		SessionTTL: cfg.Auth.SessionTTLDur,
		Cookie: jwt.CookieConfig{
			Name:     cfg.Auth.Session.CookieName,
			Domain:   cfg.Auth.Session.Domain,
			SameSite: cfg.Auth.Session.SameSite,
			Secure:   cfg.CookieSecure(),
		},
	})
	if err != nil {
		return nil, err
	}
	c.Issuer = issuer

	switch cfg.Storage.Driver {
	case "postgres":
		store, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MinIdleConns:    cfg.Storage.Postgres.MinIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("app: postgres store: %w", err)
		}
		c.Repo = store
	case "memory":
		c.Repo = memory.New()
		logger.L().Warn("using in-memory storage, data is lost on restart")
	default:
		return nil, fmt.Errorf("app: unknown storage driver %q", cfg.Storage.Driver)
	}

	if !cfg.Rate.Disabled {
		if err := c.buildLimiters(); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) buildLimiters() error {
	cfg := c.Cfg
	switch cfg.Rate.Backend {
	case "redis":
		c.redis = rdb.NewClient(&rdb.Options{
			Addr: cfg.Rate.Redis.Addr,
			DB:   cfg.Rate.Redis.DB,
		})
		prefix := cfg.Rate.Redis.Prefix
		if prefix == "" {
			prefix = "budgethq:rate"
		}
		c.AuthLimiter = rate.NewRedisLimiter(c.redis, prefix+":auth", cfg.Rate.Auth.Limit, cfg.Rate.AuthWindowDur)
		c.GlobalLimiter = rate.NewRedisLimiter(c.redis, prefix+":global", cfg.Rate.Global.Limit, cfg.Rate.GlobalWindowDur)
	case "memory":
		c.AuthLimiter = rate.NewMemoryLimiter(cfg.Rate.Auth.Limit, cfg.Rate.AuthWindowDur)
		c.GlobalLimiter = rate.NewMemoryLimiter(cfg.Rate.Global.Limit, cfg.Rate.GlobalWindowDur)
	default:
		return fmt.Errorf("app: unknown rate backend %q", cfg.Rate.Backend)
	}
	return nil
}

func (c *Container) Close() {
	if c.Repo != nil {
		c.Repo.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
