// Package memory implements core.Repository on in-process maps. It
// backs the dev "memory" storage driver and the handler tests; the
// semantics mirror the pg implementation, including the TOTP invariant.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/store/core"
)

type Store struct {
	mu sync.RWMutex

	users     map[string]*core.User // by id
	usernames map[string]string     // username -> id
	budgets   map[string]*core.Budget
	txs       map[string]*core.Transaction
	events    map[string]*core.Event
	deadlines map[string]*core.Deadline
}

func New() *Store {
	return &Store{
		users:     map[string]*core.User{},
		usernames: map[string]string{},
		budgets:   map[string]*core.Budget{},
		txs:       map[string]*core.Transaction{},
		events:    map[string]*core.Event{},
		deadlines: map[string]*core.Deadline{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// ---------- users ----------

func cloneUser(u *core.User) *core.User {
	cp := *u
	if u.TOTPVerifiedAt != nil {
		t := *u.TOTPVerifiedAt
		cp.TOTPVerifiedAt = &t
	}
	return &cp
}

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernames[u.Username]; taken {
		return core.ErrConflict
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = cloneUser(u)
	s.usernames[u.Username] = u.ID
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernames[username]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) ListUsers(context.Context) ([]*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) UpdateUserTimezone(_ context.Context, id, timezone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.Timezone = timezone
	return nil
}

func (s *Store) SetPendingTOTPSecret(_ context.Context, id, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	// last-write-wins on concurrent setups, same as the SQL column
	u.TOTPSecret = secret
	u.TOTPEnabled = false
	u.TOTPVerifiedAt = nil
	return nil
}

func (s *Store) EnableTOTP(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	if u.TOTPSecret == "" {
		return core.ErrInvalid
	}
	u.TOTPEnabled = true
	at = at.UTC()
	u.TOTPVerifiedAt = &at
	return nil
}

func (s *Store) DisableTOTP(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.TOTPSecret = ""
	u.TOTPEnabled = false
	u.TOTPVerifiedAt = nil
	return nil
}

// ---------- budgets ----------

func (s *Store) CreateBudget(_ context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	cp := *b
	s.budgets[b.ID] = &cp
	return nil
}

func (s *Store) GetBudget(_ context.Context, id, ownerID string) (*core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return nil, core.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) ListBudgetsByOwner(_ context.Context, ownerID string) ([]*core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Budget
	for _, b := range s.budgets {
		if b.OwnerID == ownerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateBudget(_ context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.budgets[b.ID]
	if !ok || cur.OwnerID != b.OwnerID {
		return core.ErrNotFound
	}
	cur.Name = b.Name
	cur.AllocatedCents = b.AllocatedCents
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.budgets, id)
	for tid, t := range s.txs {
		if t.BudgetID == id {
			delete(s.txs, tid)
		}
	}
	for eid, e := range s.events {
		if e.BudgetID == id {
			delete(s.events, eid)
		}
	}
	for did, d := range s.deadlines {
		if d.BudgetID == id {
			delete(s.deadlines, did)
		}
	}
	return nil
}

func (s *Store) BudgetSummaries(_ context.Context, budgetIDs []string) (map[string]*core.BudgetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := map[string]bool{}
	for _, id := range budgetIDs {
		want[id] = true
	}
	out := map[string]*core.BudgetSummary{}
	for _, t := range s.txs {
		if !want[t.BudgetID] {
			continue
		}
		sum := out[t.BudgetID]
		if sum == nil {
			sum = &core.BudgetSummary{BudgetID: t.BudgetID}
			out[t.BudgetID] = sum
		}
		switch t.Type {
		case core.TxIncome:
			sum.ProjIncomeCents += t.AmountCents
			if t.Status == core.TxActual {
				sum.ActualIncomeCents += t.AmountCents
			}
		case core.TxExpense:
			sum.ProjExpenseCents += t.AmountCents
			if t.Status == core.TxActual {
				sum.ActualExpenseCents += t.AmountCents
			}
		}
	}
	return out, nil
}

// ---------- transactions ----------

func (s *Store) CreateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[t.BudgetID]; !ok {
		return core.ErrNotFound
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	cp := *t
	s.txs[t.ID] = &cp
	return nil
}

func (s *Store) ListTransactions(_ context.Context, budgetID string) ([]*core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Transaction
	for _, t := range s.txs {
		if t.BudgetID == budgetID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.txs[t.ID]
	if !ok || cur.BudgetID != t.BudgetID {
		return core.ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	cur.EventID = t.EventID
	cur.Type = t.Type
	cur.Status = t.Status
	cur.AmountCents = t.AmountCents
	cur.Category = t.Category
	cur.Notes = t.Notes
	cur.Timestamp = t.Timestamp
	cur.UpdatedAt = t.UpdatedAt
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id, budgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	if !ok || t.BudgetID != budgetID {
		return core.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

// ---------- events ----------

func (s *Store) CreateEvent(_ context.Context, e *core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[e.BudgetID]; !ok {
		return core.ErrNotFound
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *Store) ListEvents(_ context.Context, budgetID string) ([]*core.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Event
	for _, e := range s.events {
		if e.BudgetID == budgetID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateEvent(_ context.Context, e *core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.events[e.ID]
	if !ok || cur.BudgetID != e.BudgetID {
		return core.ErrNotFound
	}
	cur.Name = e.Name
	cur.AllocatedCents = e.AllocatedCents
	cur.StartTS = e.StartTS
	cur.EndTS = e.EndTS
	cur.Notes = e.Notes
	return nil
}

func (s *Store) DeleteEvent(_ context.Context, id, budgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.BudgetID != budgetID {
		return core.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// ---------- deadlines ----------

func (s *Store) CreateDeadline(_ context.Context, d *core.Deadline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[d.BudgetID]; !ok {
		return core.ErrNotFound
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = core.DeadlineOpen
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	cp := *d
	s.deadlines[d.ID] = &cp
	return nil
}

func (s *Store) ListDeadlines(_ context.Context, budgetID string) ([]*core.Deadline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Deadline
	for _, d := range s.deadlines {
		if d.BudgetID == budgetID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueTS < out[j].DueTS })
	return out, nil
}

func (s *Store) UpdateDeadline(_ context.Context, d *core.Deadline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.deadlines[d.ID]
	if !ok || cur.BudgetID != d.BudgetID {
		return core.ErrNotFound
	}
	if !core.ValidDeadlineStatus(d.Status) {
		return core.ErrInvalid
	}
	cur.Title = d.Title
	cur.Description = d.Description
	cur.Category = d.Category
	cur.Status = d.Status
	cur.Link = d.Link
	cur.DueTS = d.DueTS
	return nil
}

func (s *Store) UpdateDeadlineStatus(_ context.Context, id, budgetID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deadlines[id]
	if !ok || d.BudgetID != budgetID {
		return core.ErrNotFound
	}
	if !core.ValidDeadlineStatus(status) {
		return core.ErrInvalid
	}
	d.Status = status
	return nil
}

func (s *Store) DeleteDeadline(_ context.Context, id, budgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deadlines[id]
	if !ok || d.BudgetID != budgetID {
		return core.ErrNotFound
	}
	delete(s.deadlines, id)
	return nil
}

// ---------- analytics ----------

func (s *Store) CategoryTotals(_ context.Context, budgetID string) ([]*core.CategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc := map[string]*core.CategoryTotal{}
	for _, t := range s.txs {
		if t.BudgetID != budgetID {
			continue
		}
		ct := acc[t.Category]
		if ct == nil {
			ct = &core.CategoryTotal{Category: t.Category}
			acc[t.Category] = ct
		}
		if t.Type == core.TxIncome {
			ct.IncomeCents += t.AmountCents
		} else {
			ct.ExpenseCents += t.AmountCents
		}
	}
	out := make([]*core.CategoryTotal, 0, len(acc))
	for _, ct := range acc {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) MonthlyTotals(_ context.Context, budgetID string) ([]*core.MonthlyTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc := map[string]*core.MonthlyTotal{}
	for _, t := range s.txs {
		if t.BudgetID != budgetID {
			continue
		}
		month := time.Unix(t.Timestamp, 0).UTC().Format("2006-01")
		mt := acc[month]
		if mt == nil {
			mt = &core.MonthlyTotal{Month: month}
			acc[month] = mt
		}
		if t.Type == core.TxIncome {
			mt.IncomeCents += t.AmountCents
		} else {
			mt.ExpenseCents += t.AmountCents
		}
	}
	out := make([]*core.MonthlyTotal, 0, len(acc))
	for _, mt := range acc {
		out = append(out, mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (s *Store) DeadlineCounts(_ context.Context, budgetID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]int{}
	for _, d := range s.deadlines {
		if d.BudgetID == budgetID {
			out[d.Status]++
		}
	}
	return out, nil
}
