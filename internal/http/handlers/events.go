package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/store/core"
)

type Events struct {
	c *app.Container
}

func NewEvents(c *app.Container) *Events { return &Events{c: c} }

func (h *Events) Register(r chi.Router) {
	r.Route("/events", func(g chi.Router) {
		g.Get("/", h.list)
		g.Post("/", h.create)
		g.Put("/{id}", h.update)
		g.Delete("/{id}", h.remove)
	})
}

type createEventRequest struct {
	BudgetID       string `json:"budgetId"`
	Name           string `json:"name"`
	AllocatedCents int64  `json:"allocatedCents"`
	StartTS        *int64 `json:"startTs"`
	EndTS          *int64 `json:"endTs"`
	Notes          string `json:"notes"`
}

func (h *Events) create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Event name is required"))
		return
	}
	if req.AllocatedCents < 0 {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Allocation cannot be negative"))
		return
	}
	if _, err := ownedBudget(r, h.c, req.BudgetID); err != nil {
		writeStoreErr(w, err)
		return
	}

	e := &core.Event{
		ID:             uuid.NewString(),
		BudgetID:       req.BudgetID,
		Name:           req.Name,
		AllocatedCents: req.AllocatedCents,
		StartTS:        req.StartTS,
		EndTS:          req.EndTS,
		Notes:          req.Notes,
	}
	if err := h.c.Repo.CreateEvent(r.Context(), e); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"event": viewEvent(e)})
}

func (h *Events) list(w http.ResponseWriter, r *http.Request) {
	budgetID := r.URL.Query().Get("budgetId")
	if budgetID == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("budgetId is required"))
		return
	}
	if _, err := ownedBudget(r, h.c, budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	events, err := h.c.Repo.ListEvents(r.Context(), budgetID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, viewEvent(e))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"events": views})
}

func (h *Events) update(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Event name is required"))
		return
	}
	if req.AllocatedCents < 0 {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Allocation cannot be negative"))
		return
	}
	if _, err := ownedBudget(r, h.c, req.BudgetID); err != nil {
		writeStoreErr(w, err)
		return
	}

	e := &core.Event{
		ID:             chi.URLParam(r, "id"),
		BudgetID:       req.BudgetID,
		Name:           req.Name,
		AllocatedCents: req.AllocatedCents,
		StartTS:        req.StartTS,
		EndTS:          req.EndTS,
		Notes:          req.Notes,
	}
	if err := h.c.Repo.UpdateEvent(r.Context(), e); err != nil {
		writeStoreErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"event": viewEvent(e)})
}

func (h *Events) remove(w http.ResponseWriter, r *http.Request) {
	budgetID := r.URL.Query().Get("budgetId")
	if budgetID == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("budgetId is required"))
		return
	}
	if _, err := ownedBudget(r, h.c, budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	if err := h.c.Repo.DeleteEvent(r.Context(), chi.URLParam(r, "id"), budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Event deleted"})
}
