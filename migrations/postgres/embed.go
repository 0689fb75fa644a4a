// Package migrations embeds the schema SQL applied by the migrate
// subcommand. Files pair as NNNN_name_up.sql / NNNN_name_down.sql and
// apply in lexical order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var FS embed.FS

// Up applies every *_up.sql in ascending order. Statements are plain
// DDL with IF NOT EXISTS guards, so reapplying is safe.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	return apply(ctx, pool, "_up.sql", false)
}

// Down applies every *_down.sql in descending order.
func Down(ctx context.Context, pool *pgxpool.Pool) error {
	return apply(ctx, pool, "_down.sql", true)
}

func apply(ctx context.Context, pool *pgxpool.Pool, suffix string, reverse bool) error {
	entries, err := FS.ReadDir(".")
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if reverse {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	for _, name := range files {
		sql, err := FS.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migrations: %s: %w", name, err)
		}
	}
	return nil
}
