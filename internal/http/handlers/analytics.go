package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
)

type Analytics struct {
	c *app.Container
}

func NewAnalytics(c *app.Container) *Analytics { return &Analytics{c: c} }

func (h *Analytics) Register(r chi.Router) {
	r.Get("/analytics/overview", h.overview)
}

type categoryRow struct {
	Category     string `json:"category"`
	IncomeCents  int64  `json:"incomeCents"`
	ExpenseCents int64  `json:"expenseCents"`
}

type monthlyRow struct {
	Month        string `json:"month"`
	IncomeCents  int64  `json:"incomeCents"`
	ExpenseCents int64  `json:"expenseCents"`
}

func (h *Analytics) overview(w http.ResponseWriter, r *http.Request) {
	budgetID := r.URL.Query().Get("budgetId")
	if budgetID == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("budgetId is required"))
		return
	}
	if _, err := ownedBudget(r, h.c, budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}

	cats, err := h.c.Repo.CategoryTotals(r.Context(), budgetID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	months, err := h.c.Repo.MonthlyTotals(r.Context(), budgetID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	deadlines, err := h.c.Repo.DeadlineCounts(r.Context(), budgetID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	catRows := make([]categoryRow, 0, len(cats))
	for _, c := range cats {
		catRows = append(catRows, categoryRow{c.Category, c.IncomeCents, c.ExpenseCents})
	}
	monthRows := make([]monthlyRow, 0, len(months))
	for _, m := range months {
		monthRows = append(monthRows, monthlyRow{m.Month, m.IncomeCents, m.ExpenseCents})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"categories": catRows,
		"monthly":    monthRows,
		"deadlines":  deadlines,
	})
}
