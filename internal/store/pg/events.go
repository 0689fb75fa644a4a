package pg

import (
	"context"

	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/store/core"
)

func (s *Store) CreateEvent(ctx context.Context, e *core.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, budget_id, name, allocated_cents, start_ts, end_ts, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.BudgetID, e.Name, e.AllocatedCents, e.StartTS, e.EndTS, e.Notes)
	return mapErr(err)
}

func (s *Store) ListEvents(ctx context.Context, budgetID string) ([]*core.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, budget_id, name, allocated_cents, start_ts, end_ts, notes
		FROM events WHERE budget_id = $1 ORDER BY name`, budgetID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*core.Event
	for rows.Next() {
		var e core.Event
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.Name, &e.AllocatedCents,
			&e.StartTS, &e.EndTS, &e.Notes); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &e)
	}
	return out, mapErr(rows.Err())
}

func (s *Store) UpdateEvent(ctx context.Context, e *core.Event) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE events
		SET name = $3, allocated_cents = $4, start_ts = $5, end_ts = $6, notes = $7
		WHERE id = $1 AND budget_id = $2`,
		e.ID, e.BudgetID, e.Name, e.AllocatedCents, e.StartTS, e.EndTS, e.Notes)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id, budgetID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM events WHERE id = $1 AND budget_id = $2`, id, budgetID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
