package pg

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/store/core"
)

const userCols = `id, username, password_hash, display_name, timezone, role,
	COALESCE(totp_secret, ''), totp_enabled, totp_verified_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName,
		&u.Timezone, &u.Role, &u.TOTPSecret, &u.TOTPEnabled,
		&u.TOTPVerifiedAt, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, display_name, timezone, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, u.PasswordHash, u.DisplayName, u.Timezone, u.Role, u.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]*core.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, mapErr(rows.Err())
}

func (s *Store) UpdateUserTimezone(ctx context.Context, id, timezone string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET timezone = $2 WHERE id = $1`, id, timezone)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// SetPendingTOTPSecret overwrites any prior secret and drops the enabled
// flag; re-running setup restarts enrollment. Concurrent calls are
// last-write-wins on the secret column.
func (s *Store) SetPendingTOTPSecret(ctx context.Context, id, secret string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET totp_secret = $2, totp_enabled = FALSE, totp_verified_at = NULL
		WHERE id = $1`, id, secret)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// EnableTOTP flips the flag only when a secret is present, so an
// enabled row always carries one.
func (s *Store) EnableTOTP(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET totp_enabled = TRUE, totp_verified_at = $2
		WHERE id = $1 AND totp_secret IS NOT NULL`, id, at.UTC())
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrInvalid
	}
	return nil
}

func (s *Store) DisableTOTP(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET totp_secret = NULL, totp_enabled = FALSE, totp_verified_at = NULL
		WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
