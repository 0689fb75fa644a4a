// Package handlers implements the HTTP surface: the auth/TOTP login
// protocol and the treasury CRUD around it.
package handlers

import (
	"time"

	"github.com/hknclub/budgethq/internal/store/core"
)

// userView is the only user shape that leaves the server. PasswordHash
// and the TOTP secret are stripped unconditionally.
type userView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone"`
	Role        string `json:"role"`
	TOTPEnabled bool   `json:"totpEnabled"`
}

func viewUser(u *core.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Timezone:    u.Timezone,
		Role:        u.Role,
		TOTPEnabled: u.TOTPEnabled,
	}
}

type sessionView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type budgetView struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	AcademicYearStart  int64     `json:"academicYearStart"`
	AcademicYearEnd    int64     `json:"academicYearEnd"`
	AllocatedCents     int64     `json:"allocatedCents"`
	ActualIncomeCents  int64     `json:"actualIncomeCents"`
	ActualExpenseCents int64     `json:"actualExpenseCents"`
	ProjIncomeCents    int64     `json:"projectedIncomeCents"`
	ProjExpenseCents   int64     `json:"projectedExpenseCents"`
	CreatedAt          time.Time `json:"createdAt"`
}

func viewBudget(b *core.Budget, s *core.BudgetSummary) budgetView {
	v := budgetView{
		ID:                b.ID,
		Name:              b.Name,
		AcademicYearStart: b.AcademicYearStart,
		AcademicYearEnd:   b.AcademicYearEnd,
		AllocatedCents:    b.AllocatedCents,
		CreatedAt:         b.CreatedAt,
	}
	if s != nil {
		v.ActualIncomeCents = s.ActualIncomeCents
		v.ActualExpenseCents = s.ActualExpenseCents
		v.ProjIncomeCents = s.ProjIncomeCents
		v.ProjExpenseCents = s.ProjExpenseCents
	}
	return v
}

type transactionView struct {
	ID          string  `json:"id"`
	BudgetID    string  `json:"budgetId"`
	EventID     *string `json:"eventId"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	AmountCents int64   `json:"amountCents"`
	Category    string  `json:"category"`
	Notes       string  `json:"notes"`
	Timestamp   int64   `json:"timestamp"`
}

func viewTransaction(t *core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		BudgetID:    t.BudgetID,
		EventID:     t.EventID,
		Type:        t.Type,
		Status:      t.Status,
		AmountCents: t.AmountCents,
		Category:    t.Category,
		Notes:       t.Notes,
		Timestamp:   t.Timestamp,
	}
}

type eventView struct {
	ID             string `json:"id"`
	BudgetID       string `json:"budgetId"`
	Name           string `json:"name"`
	AllocatedCents int64  `json:"allocatedCents"`
	StartTS        *int64 `json:"startTs"`
	EndTS          *int64 `json:"endTs"`
	Notes          string `json:"notes"`
}

func viewEvent(e *core.Event) eventView {
	return eventView{
		ID:             e.ID,
		BudgetID:       e.BudgetID,
		Name:           e.Name,
		AllocatedCents: e.AllocatedCents,
		StartTS:        e.StartTS,
		EndTS:          e.EndTS,
		Notes:          e.Notes,
	}
}

type deadlineView struct {
	ID          string `json:"id"`
	BudgetID    string `json:"budgetId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Link        string `json:"link"`
	DueTS       int64  `json:"dueTs"`
}

func viewDeadline(d *core.Deadline) deadlineView {
	return deadlineView{
		ID:          d.ID,
		BudgetID:    d.BudgetID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Status:      d.Status,
		Link:        d.Link,
		DueTS:       d.DueTS,
	}
}
