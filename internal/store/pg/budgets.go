package pg

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/store/core"
)

func (s *Store) CreateBudget(ctx context.Context, b *core.Budget) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO budgets (id, owner_id, name, academic_year_start, academic_year_end, allocated_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.OwnerID, b.Name, b.AcademicYearStart, b.AcademicYearEnd, b.AllocatedCents, b.CreatedAt)
	return mapErr(err)
}

func (s *Store) GetBudget(ctx context.Context, id, ownerID string) (*core.Budget, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, academic_year_start, academic_year_end, allocated_cents, created_at
		FROM budgets WHERE id = $1 AND owner_id = $2`, id, ownerID)
	var b core.Budget
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.AcademicYearStart,
		&b.AcademicYearEnd, &b.AllocatedCents, &b.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *Store) ListBudgetsByOwner(ctx context.Context, ownerID string) ([]*core.Budget, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, name, academic_year_start, academic_year_end, allocated_cents, created_at
		FROM budgets WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.AcademicYearStart,
			&b.AcademicYearEnd, &b.AllocatedCents, &b.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &b)
	}
	return out, mapErr(rows.Err())
}

func (s *Store) UpdateBudget(ctx context.Context, b *core.Budget) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE budgets SET name = $3, allocated_cents = $4
		WHERE id = $1 AND owner_id = $2`,
		b.ID, b.OwnerID, b.Name, b.AllocatedCents)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, id, ownerID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM budgets WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) BudgetSummaries(ctx context.Context, budgetIDs []string) (map[string]*core.BudgetSummary, error) {
	out := map[string]*core.BudgetSummary{}
	if len(budgetIDs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT budget_id,
			SUM(CASE WHEN type = 'income'  AND status = 'actual' THEN amount_cents ELSE 0 END),
			SUM(CASE WHEN type = 'expense' AND status = 'actual' THEN amount_cents ELSE 0 END),
			SUM(CASE WHEN type = 'income'  THEN amount_cents ELSE 0 END),
			SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END)
		FROM transactions
		WHERE budget_id = ANY($1)
		GROUP BY budget_id`, budgetIDs)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var sum core.BudgetSummary
		if err := rows.Scan(&sum.BudgetID, &sum.ActualIncomeCents, &sum.ActualExpenseCents,
			&sum.ProjIncomeCents, &sum.ProjExpenseCents); err != nil {
			return nil, mapErr(err)
		}
		out[sum.BudgetID] = &sum
	}
	return out, mapErr(rows.Err())
}
