package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/http/middlewares"
	"github.com/hknclub/budgethq/internal/store/core"
	"github.com/hknclub/budgethq/internal/util/timeutil"
)

// Budgets is the per-owner budget CRUD. A budget is "archived" once its
// academic year has ended.
type Budgets struct {
	c *app.Container
}

func NewBudgets(c *app.Container) *Budgets { return &Budgets{c: c} }

func (h *Budgets) Register(r chi.Router) {
	r.Route("/budgets", func(g chi.Router) {
		g.Get("/", h.listActive)
		g.Get("/archived", h.listArchived)
		g.Post("/", h.create)
		g.Get("/{id}", h.get)
		g.Put("/{id}", h.update)
		g.Delete("/{id}", h.remove)
	})
}

type createBudgetRequest struct {
	Name              string `json:"name"`
	AllocatedCents    int64  `json:"allocatedCents"`
	AcademicYearStart int64  `json:"academicYearStart"`
	AcademicYearEnd   int64  `json:"academicYearEnd"`
}

func (h *Budgets) create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Budget name is required"))
		return
	}
	if req.AllocatedCents < 0 {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Allocation cannot be negative"))
		return
	}
	if req.AcademicYearStart == 0 || req.AcademicYearEnd == 0 {
		req.AcademicYearStart, req.AcademicYearEnd = timeutil.AcademicYearBounds(time.Now())
	}
	if req.AcademicYearEnd <= req.AcademicYearStart {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Academic year end must be after its start"))
		return
	}

	claims := middlewares.ClaimsFrom(r.Context())
	b := &core.Budget{
		ID:                uuid.NewString(),
		OwnerID:           claims.UserID,
		Name:              req.Name,
		AcademicYearStart: req.AcademicYearStart,
		AcademicYearEnd:   req.AcademicYearEnd,
		AllocatedCents:    req.AllocatedCents,
	}
	if err := h.c.Repo.CreateBudget(r.Context(), b); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"budget": viewBudget(b, nil)})
}

func (h *Budgets) listActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *Budgets) listArchived(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Budgets) list(w http.ResponseWriter, r *http.Request, archived bool) {
	claims := middlewares.ClaimsFrom(r.Context())
	all, err := h.c.Repo.ListBudgetsByOwner(r.Context(), claims.UserID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	now := time.Now().Unix()
	picked := make([]*core.Budget, 0, len(all))
	ids := make([]string, 0, len(all))
	for _, b := range all {
		if (b.AcademicYearEnd < now) == archived {
			picked = append(picked, b)
			ids = append(ids, b.ID)
		}
	}
	summaries, err := h.c.Repo.BudgetSummaries(r.Context(), ids)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	views := make([]budgetView, 0, len(picked))
	for _, b := range picked {
		views = append(views, viewBudget(b, summaries[b.ID]))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"budgets": views})
}

func (h *Budgets) get(w http.ResponseWriter, r *http.Request) {
	claims := middlewares.ClaimsFrom(r.Context())
	id := chi.URLParam(r, "id")
	b, err := h.c.Repo.GetBudget(r.Context(), id, claims.UserID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	summaries, err := h.c.Repo.BudgetSummaries(r.Context(), []string{b.ID})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"budget": viewBudget(b, summaries[b.ID])})
}

type updateBudgetRequest struct {
	Name           string `json:"name"`
	AllocatedCents *int64 `json:"allocatedCents"`
}

// update touches name and allocation only; the academic year is fixed
// at creation.
func (h *Budgets) update(w http.ResponseWriter, r *http.Request) {
	var req updateBudgetRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if req.AllocatedCents != nil && *req.AllocatedCents < 0 {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Allocation cannot be negative"))
		return
	}

	claims := middlewares.ClaimsFrom(r.Context())
	id := chi.URLParam(r, "id")
	b, err := h.c.Repo.GetBudget(r.Context(), id, claims.UserID)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		b.Name = name
	}
	if req.AllocatedCents != nil {
		b.AllocatedCents = *req.AllocatedCents
	}
	if err := h.c.Repo.UpdateBudget(r.Context(), b); err != nil {
		writeStoreErr(w, err)
		return
	}
	summaries, err := h.c.Repo.BudgetSummaries(r.Context(), []string{b.ID})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"budget": viewBudget(b, summaries[b.ID])})
}

func (h *Budgets) remove(w http.ResponseWriter, r *http.Request) {
	claims := middlewares.ClaimsFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.c.Repo.DeleteBudget(r.Context(), id, claims.UserID); err != nil {
		writeStoreErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Budget deleted"})
}

// writeStoreErr maps the store taxonomy onto HTTP errors.
func writeStoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		httpx.WriteError(w, httpx.ErrNotFound)
	case errors.Is(err, core.ErrConflict):
		httpx.WriteError(w, httpx.ErrConflict)
	case errors.Is(err, core.ErrInvalid):
		httpx.WriteError(w, httpx.ErrValidation)
	default:
		httpx.WriteError(w, err)
	}
}
