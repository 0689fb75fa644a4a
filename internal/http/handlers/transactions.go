package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/http/middlewares"
	"github.com/hknclub/budgethq/internal/store/core"
)

type Transactions struct {
	c *app.Container
}

func NewTransactions(c *app.Container) *Transactions { return &Transactions{c: c} }

func (h *Transactions) Register(r chi.Router) {
	r.Route("/transactions", func(g chi.Router) {
		g.Get("/", h.list)
		g.Post("/", h.create)
		g.Put("/{id}", h.update)
		g.Delete("/{id}", h.remove)
	})
}

// ownedBudget loads a budget scoped to the session user; every
// transaction/event/deadline operation goes through it so one member
// cannot touch another's budget by guessing IDs.
func ownedBudget(r *http.Request, c *app.Container, budgetID string) (*core.Budget, error) {
	claims := middlewares.ClaimsFrom(r.Context())
	return c.Repo.GetBudget(r.Context(), budgetID, claims.UserID)
}

type createTransactionRequest struct {
	BudgetID    string  `json:"budgetId"`
	EventID     *string `json:"eventId"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	AmountCents int64   `json:"amountCents"`
	Category    string  `json:"category"`
	Notes       string  `json:"notes"`
	Timestamp   int64   `json:"timestamp"`
}

// normalize defaults the status and timestamp and reports the first
// validation failure.
func (req *createTransactionRequest) normalize() error {
	if req.Type != core.TxIncome && req.Type != core.TxExpense {
		return httpx.ErrValidation.WithMessage("Type must be income or expense")
	}
	if req.Status == "" {
		req.Status = core.TxActual
	}
	if req.Status != core.TxActual && req.Status != core.TxPlanned {
		return httpx.ErrValidation.WithMessage("Status must be actual or planned")
	}
	if req.AmountCents <= 0 {
		return httpx.ErrValidation.WithMessage("Amount must be positive")
	}
	if req.Timestamp == 0 {
		req.Timestamp = time.Now().Unix()
	}
	return nil
}

func (h *Transactions) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if err := req.normalize(); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if _, err := ownedBudget(r, h.c, req.BudgetID); err != nil {
		writeStoreErr(w, err)
		return
	}

	claims := middlewares.ClaimsFrom(r.Context())
	uid := claims.UserID
	t := &core.Transaction{
		ID:          uuid.NewString(),
		BudgetID:    req.BudgetID,
		EventID:     req.EventID,
		UserID:      &uid,
		Type:        req.Type,
		Status:      req.Status,
		AmountCents: req.AmountCents,
		Category:    req.Category,
		Notes:       req.Notes,
		Timestamp:   req.Timestamp,
	}
	if err := h.c.Repo.CreateTransaction(r.Context(), t); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"transaction": viewTransaction(t)})
}

func (h *Transactions) list(w http.ResponseWriter, r *http.Request) {
	budgetID := r.URL.Query().Get("budgetId")
	if budgetID == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("budgetId is required"))
		return
	}
	if _, err := ownedBudget(r, h.c, budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	txs, err := h.c.Repo.ListTransactions(r.Context(), budgetID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, viewTransaction(t))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"transactions": views})
}

// update replaces every mutable field; the transaction keeps its
// budget and the member who recorded it.
func (h *Transactions) update(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if err := req.normalize(); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if _, err := ownedBudget(r, h.c, req.BudgetID); err != nil {
		writeStoreErr(w, err)
		return
	}

	t := &core.Transaction{
		ID:          chi.URLParam(r, "id"),
		BudgetID:    req.BudgetID,
		EventID:     req.EventID,
		Type:        req.Type,
		Status:      req.Status,
		AmountCents: req.AmountCents,
		Category:    req.Category,
		Notes:       req.Notes,
		Timestamp:   req.Timestamp,
	}
	if err := h.c.Repo.UpdateTransaction(r.Context(), t); err != nil {
		writeStoreErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"transaction": viewTransaction(t)})
}

func (h *Transactions) remove(w http.ResponseWriter, r *http.Request) {
	budgetID := r.URL.Query().Get("budgetId")
	if budgetID == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("budgetId is required"))
		return
	}
	if _, err := ownedBudget(r, h.c, budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	if err := h.c.Repo.DeleteTransaction(r.Context(), chi.URLParam(r, "id"), budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Transaction deleted"})
}
