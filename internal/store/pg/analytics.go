package pg

import (
	"context"

	"github.com/hknclub/budgethq/internal/store/core"
)

func (s *Store) CategoryTotals(ctx context.Context, budgetID string) ([]*core.CategoryTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category,
			SUM(CASE WHEN type = 'income'  THEN amount_cents ELSE 0 END),
			SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END)
		FROM transactions WHERE budget_id = $1
		GROUP BY category ORDER BY category`, budgetID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.IncomeCents, &ct.ExpenseCents); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &ct)
	}
	return out, mapErr(rows.Err())
}

func (s *Store) MonthlyTotals(ctx context.Context, budgetID string) ([]*core.MonthlyTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(to_timestamp(ts) AT TIME ZONE 'UTC', 'YYYY-MM') AS month,
			SUM(CASE WHEN type = 'income'  THEN amount_cents ELSE 0 END),
			SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END)
		FROM transactions WHERE budget_id = $1
		GROUP BY month ORDER BY month`, budgetID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []*core.MonthlyTotal
	for rows.Next() {
		var mt core.MonthlyTotal
		if err := rows.Scan(&mt.Month, &mt.IncomeCents, &mt.ExpenseCents); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &mt)
	}
	return out, mapErr(rows.Err())
}

func (s *Store) DeadlineCounts(ctx context.Context, budgetID string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM deadlines WHERE budget_id = $1 GROUP BY status`, budgetID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapErr(err)
		}
		out[status] = n
	}
	return out, mapErr(rows.Err())
}
