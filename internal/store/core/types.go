package core

import "time"

// Roles carried in session claims. Authorization policy beyond matching
// these strings lives in the HTTP middlewares.
const (
	RoleAdmin     = "admin"
	RoleTreasurer = "treasurer"
	RoleMember    = "member"
)

func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleTreasurer || r == RoleMember
}

// User is the credential-store row. TOTPSecret is empty when the second
// factor is disabled; TOTPEnabled=true implies a non-empty secret (the
// stores enforce this, see EnableTOTP). A secret with TOTPEnabled=false
// is a pending enrollment, not an error.
type User struct {
	ID             string
	Username       string
	PasswordHash   string
	DisplayName    string
	Timezone       string
	Role           string
	TOTPSecret     string
	TOTPEnabled    bool
	TOTPVerifiedAt *time.Time
	CreatedAt      time.Time
}

// Budget groups transactions under an academic year. Amounts are cents.
type Budget struct {
	ID                string
	OwnerID           string
	Name              string
	AcademicYearStart int64 // unix seconds
	AcademicYearEnd   int64
	AllocatedCents    int64
	CreatedAt         time.Time
}

// BudgetSummary aggregates a budget's transactions. "Actual" counts only
// settled transactions; "projected" includes planned ones.
type BudgetSummary struct {
	BudgetID           string
	ActualIncomeCents  int64
	ActualExpenseCents int64
	ProjIncomeCents    int64
	ProjExpenseCents   int64
}

const (
	TxIncome  = "income"
	TxExpense = "expense"

	TxActual  = "actual"
	TxPlanned = "planned"
)

type Transaction struct {
	ID          string
	BudgetID    string
	EventID     *string
	UserID      *string
	Type        string // income | expense
	Status      string // actual | planned
	AmountCents int64
	Category    string
	Notes       string
	Timestamp   int64 // unix seconds
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Event struct {
	ID             string
	BudgetID       string
	Name           string
	AllocatedCents int64
	StartTS        *int64
	EndTS          *int64
	Notes          string
}

const (
	DeadlineOpen      = "open"
	DeadlineSubmitted = "submitted"
	DeadlineWon       = "won"
	DeadlineLost      = "lost"
)

func ValidDeadlineStatus(s string) bool {
	switch s {
	case DeadlineOpen, DeadlineSubmitted, DeadlineWon, DeadlineLost:
		return true
	}
	return false
}

type Deadline struct {
	ID          string
	BudgetID    string
	Title       string
	Description string
	Category    string
	Status      string
	Link        string
	DueTS       int64
	CreatedAt   time.Time
}

// Analytics projections.

type CategoryTotal struct {
	Category     string
	IncomeCents  int64
	ExpenseCents int64
}

type MonthlyTotal struct {
	Month        string // "2006-01"
	IncomeCents  int64
	ExpenseCents int64
}
