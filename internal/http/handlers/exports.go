package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
)

// Exports serves direct-link downloads. The browser opens these without
// the API client attached, so authorization comes from a short-lived
// export token in the query string instead of the session cookie.
type Exports struct {
	c *app.Container
}

func NewExports(c *app.Container) *Exports { return &Exports{c: c} }

func (h *Exports) Register(r chi.Router) {
	r.Get("/exports/transactions.csv", h.transactionsCSV)
}

func (h *Exports) transactionsCSV(w http.ResponseWriter, r *http.Request) {
	claims, err := h.c.Issuer.ParseExport(r.URL.Query().Get("token"))
	if err != nil {
		httpx.WriteError(w, httpx.ErrInvalidToken)
		return
	}
	budgetID := r.URL.Query().Get("budgetId")
	if budgetID == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("budgetId is required"))
		return
	}
	budget, err := h.c.Repo.GetBudget(r.Context(), budgetID, claims.UserID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	txs, err := h.c.Repo.ListTransactions(r.Context(), budgetID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", budget.Name+"-transactions.csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "date", "type", "status", "category", "amount_cents", "notes"})
	for _, t := range txs {
		_ = cw.Write([]string{
			t.ID,
			time.Unix(t.Timestamp, 0).UTC().Format("2006-01-02"),
			t.Type,
			t.Status,
			t.Category,
			strconv.FormatInt(t.AmountCents, 10),
			t.Notes,
		})
	}
	cw.Flush()
}
