// Package pg implements core.Repository on PostgreSQL via pgxpool.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hknclub/budgethq/internal/observability/logger"
	"github.com/hknclub/budgethq/internal/store/core"
)

type Store struct{ pool *pgxpool.Pool }

// Tuning mirrors the config storage.postgres block.
type Tuning struct {
	MaxOpenConns    int
	MinIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, tune Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if tune.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(tune.MaxOpenConns)
	}
	if tune.MinIdleConns > 0 {
		pcfg.MinConns = int32(tune.MinIdleConns)
	}
	if tune.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(tune.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	// Non-blocking startup: a down database should not stop the process,
	// requests will surface errors until it comes back.
	if err := pool.Ping(ctx); err != nil {
		logger.Named("pg").Warn("startup ping failed", logger.Err(err))
	} else {
		logger.Named("pg").Info("pool ready")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Pool exposes the underlying pool for migrations.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// mapErr translates driver errors into the core taxonomy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return core.ErrConflict
	}
	return err
}
