package core

import (
	"context"
	"time"
)

// Repository is the persistence contract the handlers program against.
// Implementations: pg (pgxpool) and memory (dev/tests).
type Repository interface {
	// Users. CreateUser returns ErrConflict when the username is taken.
	CreateUser(ctx context.Context, u *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUserTimezone(ctx context.Context, id, timezone string) error

	// TOTP columns transition only through these three. EnableTOTP
	// returns ErrInvalid when no pending secret exists, which keeps the
	// "enabled without secret" state unrepresentable.
	SetPendingTOTPSecret(ctx context.Context, id, secret string) error
	EnableTOTP(ctx context.Context, id string, at time.Time) error
	DisableTOTP(ctx context.Context, id string) error

	// Budgets. Lookups are scoped to the owner, and updates match on
	// both id and owner so a foreign row reads as ErrNotFound.
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id, ownerID string) (*Budget, error)
	ListBudgetsByOwner(ctx context.Context, ownerID string) ([]*Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error
	DeleteBudget(ctx context.Context, id, ownerID string) error
	BudgetSummaries(ctx context.Context, budgetIDs []string) (map[string]*BudgetSummary, error)

	// Transactions. UpdateTransaction matches on id and budget id.
	CreateTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, budgetID string) ([]*Transaction, error)
	UpdateTransaction(ctx context.Context, t *Transaction) error
	DeleteTransaction(ctx context.Context, id, budgetID string) error

	// Events.
	CreateEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context, budgetID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, e *Event) error
	DeleteEvent(ctx context.Context, id, budgetID string) error

	// Deadlines.
	CreateDeadline(ctx context.Context, d *Deadline) error
	ListDeadlines(ctx context.Context, budgetID string) ([]*Deadline, error)
	UpdateDeadline(ctx context.Context, d *Deadline) error
	UpdateDeadlineStatus(ctx context.Context, id, budgetID, status string) error
	DeleteDeadline(ctx context.Context, id, budgetID string) error

	// Analytics.
	CategoryTotals(ctx context.Context, budgetID string) ([]*CategoryTotal, error)
	MonthlyTotals(ctx context.Context, budgetID string) ([]*MonthlyTotal, error)
	DeadlineCounts(ctx context.Context, budgetID string) (map[string]int, error)

	Ping(ctx context.Context) error
	Close()
}
