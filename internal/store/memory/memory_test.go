package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hknclub/budgethq/internal/store/core"
)

func TestUserUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &core.User{Username: "alice", PasswordHash: "x"}))
	err := s.CreateUser(ctx, &core.User{Username: "alice", PasswordHash: "y"})
	require.ErrorIs(t, err, core.ErrConflict)

	// case-sensitive usernames
	require.NoError(t, s.CreateUser(ctx, &core.User{Username: "Alice", PasswordHash: "z"}))
}

func TestTOTPTransitions(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := &core.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, u))

	// enabling with no secret is unrepresentable
	require.ErrorIs(t, s.EnableTOTP(ctx, u.ID, time.Now()), core.ErrInvalid)

	require.NoError(t, s.SetPendingTOTPSecret(ctx, u.ID, "SECRET1"))
	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.TOTPEnabled)
	require.Equal(t, "SECRET1", got.TOTPSecret)

	require.NoError(t, s.EnableTOTP(ctx, u.ID, time.Now()))
	got, _ = s.GetUserByID(ctx, u.ID)
	require.True(t, got.TOTPEnabled)
	require.NotNil(t, got.TOTPVerifiedAt)

	// a fresh setup resets enrollment
	require.NoError(t, s.SetPendingTOTPSecret(ctx, u.ID, "SECRET2"))
	got, _ = s.GetUserByID(ctx, u.ID)
	require.False(t, got.TOTPEnabled)
	require.Nil(t, got.TOTPVerifiedAt)

	require.NoError(t, s.EnableTOTP(ctx, u.ID, time.Now()))
	require.NoError(t, s.DisableTOTP(ctx, u.ID))
	got, _ = s.GetUserByID(ctx, u.ID)
	require.False(t, got.TOTPEnabled)
	require.Empty(t, got.TOTPSecret)
	require.Nil(t, got.TOTPVerifiedAt)
}

func TestReturnedUsersAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := &core.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	got.PasswordHash = "mutated"

	again, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "x", again.PasswordHash)
}

func TestDeleteBudgetCascades(t *testing.T) {
	s := New()
	ctx := context.Background()

	b := &core.Budget{OwnerID: "owner", Name: "Ops"}
	require.NoError(t, s.CreateBudget(ctx, b))
	require.NoError(t, s.CreateTransaction(ctx, &core.Transaction{
		BudgetID: b.ID, Type: core.TxIncome, Status: core.TxActual, AmountCents: 100, Timestamp: time.Now().Unix(),
	}))
	require.NoError(t, s.CreateDeadline(ctx, &core.Deadline{BudgetID: b.ID, Title: "grant", DueTS: 1}))
	require.NoError(t, s.CreateEvent(ctx, &core.Event{BudgetID: b.ID, Name: "party"}))

	// scoped to owner
	require.ErrorIs(t, s.DeleteBudget(ctx, b.ID, "someone-else"), core.ErrNotFound)
	require.NoError(t, s.DeleteBudget(ctx, b.ID, "owner"))

	txs, err := s.ListTransactions(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, txs)
	ds, err := s.ListDeadlines(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, ds)
	es, err := s.ListEvents(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, es)
}

func TestUpdatesAreScoped(t *testing.T) {
	s := New()
	ctx := context.Background()

	mine := &core.Budget{OwnerID: "owner", Name: "Ops", AllocatedCents: 100}
	require.NoError(t, s.CreateBudget(ctx, mine))
	tx := &core.Transaction{
		BudgetID: mine.ID, Type: core.TxExpense, Status: core.TxPlanned,
		AmountCents: 100, Timestamp: time.Now().Unix(),
	}
	require.NoError(t, s.CreateTransaction(ctx, tx))

	// a foreign owner or budget reads as a missing row
	require.ErrorIs(t, s.UpdateBudget(ctx, &core.Budget{
		ID: mine.ID, OwnerID: "someone-else", Name: "Hijacked",
	}), core.ErrNotFound)
	require.ErrorIs(t, s.UpdateTransaction(ctx, &core.Transaction{
		ID: tx.ID, BudgetID: "other-budget", Type: core.TxExpense, Status: core.TxActual, AmountCents: 1,
	}), core.ErrNotFound)

	require.NoError(t, s.UpdateBudget(ctx, &core.Budget{
		ID: mine.ID, OwnerID: "owner", Name: "Ops 2.0", AllocatedCents: 200,
	}))
	got, err := s.GetBudget(ctx, mine.ID, "owner")
	require.NoError(t, err)
	require.Equal(t, "Ops 2.0", got.Name)
	require.EqualValues(t, 200, got.AllocatedCents)

	before := tx.UpdatedAt
	require.NoError(t, s.UpdateTransaction(ctx, &core.Transaction{
		ID: tx.ID, BudgetID: mine.ID, Type: core.TxExpense, Status: core.TxActual,
		AmountCents: 250, Timestamp: tx.Timestamp,
	}))
	txs, err := s.ListTransactions(ctx, mine.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, core.TxActual, txs[0].Status)
	require.EqualValues(t, 250, txs[0].AmountCents)
	require.False(t, txs[0].UpdatedAt.Before(before))
}

func TestBudgetSummaries(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := &core.Budget{OwnerID: "owner", Name: "Ops"}
	require.NoError(t, s.CreateBudget(ctx, b))

	mk := func(typ, status string, cents int64) {
		require.NoError(t, s.CreateTransaction(ctx, &core.Transaction{
			BudgetID: b.ID, Type: typ, Status: status, AmountCents: cents, Timestamp: time.Now().Unix(),
		}))
	}
	mk(core.TxIncome, core.TxActual, 1000)
	mk(core.TxIncome, core.TxPlanned, 500)
	mk(core.TxExpense, core.TxActual, 300)

	sums, err := s.BudgetSummaries(ctx, []string{b.ID})
	require.NoError(t, err)
	sum := sums[b.ID]
	require.NotNil(t, sum)
	require.EqualValues(t, 1000, sum.ActualIncomeCents)
	require.EqualValues(t, 1500, sum.ProjIncomeCents)
	require.EqualValues(t, 300, sum.ActualExpenseCents)
	require.EqualValues(t, 300, sum.ProjExpenseCents)
}
