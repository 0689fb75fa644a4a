package pg

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/store/core"
)

func (s *Store) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions
			(id, budget_id, event_id, user_id, type, status, amount_cents, category, notes, ts, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		t.ID, t.BudgetID, t.EventID, t.UserID, t.Type, t.Status,
		t.AmountCents, t.Category, t.Notes, t.Timestamp, t.CreatedAt, t.UpdatedAt)
	return mapErr(err)
}

func (s *Store) ListTransactions(ctx context.Context, budgetID string) ([]*core.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, budget_id, event_id, user_id, type, status, amount_cents, category, notes, ts, created_at, updated_at
		FROM transactions WHERE budget_id = $1 ORDER BY ts DESC`, budgetID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.BudgetID, &t.EventID, &t.UserID, &t.Type, &t.Status,
			&t.AmountCents, &t.Category, &t.Notes, &t.Timestamp, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &t)
	}
	return out, mapErr(rows.Err())
}

func (s *Store) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	t.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE transactions
		SET event_id = $3, type = $4, status = $5, amount_cents = $6,
			category = $7, notes = $8, ts = $9, updated_at = $10
		WHERE id = $1 AND budget_id = $2`,
		t.ID, t.BudgetID, t.EventID, t.Type, t.Status,
		t.AmountCents, t.Category, t.Notes, t.Timestamp, t.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id, budgetID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND budget_id = $2`, id, budgetID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
