package pg

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/store/core"
)

func (s *Store) CreateDeadline(ctx context.Context, d *core.Deadline) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = core.DeadlineOpen
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO deadlines (id, budget_id, title, description, category, status, link, due_ts, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.BudgetID, d.Title, d.Description, d.Category, d.Status, d.Link, d.DueTS, d.CreatedAt)
	return mapErr(err)
}

func (s *Store) ListDeadlines(ctx context.Context, budgetID string) ([]*core.Deadline, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, budget_id, title, description, category, status, link, due_ts, created_at
		FROM deadlines WHERE budget_id = $1 ORDER BY due_ts`, budgetID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*core.Deadline
	for rows.Next() {
		var d core.Deadline
		if err := rows.Scan(&d.ID, &d.BudgetID, &d.Title, &d.Description,
			&d.Category, &d.Status, &d.Link, &d.DueTS, &d.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &d)
	}
	return out, mapErr(rows.Err())
}

func (s *Store) UpdateDeadline(ctx context.Context, d *core.Deadline) error {
	if !core.ValidDeadlineStatus(d.Status) {
		return core.ErrInvalid
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE deadlines
		SET title = $3, description = $4, category = $5, status = $6, link = $7, due_ts = $8
		WHERE id = $1 AND budget_id = $2`,
		d.ID, d.BudgetID, d.Title, d.Description, d.Category, d.Status, d.Link, d.DueTS)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateDeadlineStatus(ctx context.Context, id, budgetID, status string) error {
	if !core.ValidDeadlineStatus(status) {
		return core.ErrInvalid
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE deadlines SET status = $3 WHERE id = $1 AND budget_id = $2`, id, budgetID, status)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDeadline(ctx context.Context, id, budgetID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM deadlines WHERE id = $1 AND budget_id = $2`, id, budgetID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
