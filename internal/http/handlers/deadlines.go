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

// Deadlines tracks funding applications and their open → submitted →
// won/lost progression.
type Deadlines struct {
	c *app.Container
}

func NewDeadlines(c *app.Container) *Deadlines { return &Deadlines{c: c} }

func (h *Deadlines) Register(r chi.Router) {
	r.Route("/deadlines", func(g chi.Router) {
		g.Get("/", h.list)
		g.Post("/", h.create)
		g.Put("/{id}", h.update)
		g.Patch("/{id}/status", h.updateStatus)
		g.Delete("/{id}", h.remove)
	})
}

type createDeadlineRequest struct {
	BudgetID    string `json:"budgetId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Link        string `json:"link"`
	DueTS       int64  `json:"dueTs"`
}

func (h *Deadlines) create(w http.ResponseWriter, r *http.Request) {
	var req createDeadlineRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Deadline title is required"))
		return
	}
	if req.DueTS <= 0 {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Due date is required"))
		return
	}
	if _, err := ownedBudget(r, h.c, req.BudgetID); err != nil {
		writeStoreErr(w, err)
		return
	}

	d := &core.Deadline{
		ID:          uuid.NewString(),
		BudgetID:    req.BudgetID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      core.DeadlineOpen,
		Link:        req.Link,
		DueTS:       req.DueTS,
	}
	if err := h.c.Repo.CreateDeadline(r.Context(), d); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"deadline": viewDeadline(d)})
}

func (h *Deadlines) list(w http.ResponseWriter, r *http.Request) {
	budgetID := r.URL.Query().Get("budgetId")
	if budgetID == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("budgetId is required"))
		return
	}
	if _, err := ownedBudget(r, h.c, budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	ds, err := h.c.Repo.ListDeadlines(r.Context(), budgetID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	views := make([]deadlineView, 0, len(ds))
	for _, d := range ds {
		views = append(views, viewDeadline(d))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"deadlines": views})
}

type updateDeadlineRequest struct {
	BudgetID    string `json:"budgetId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Link        string `json:"link"`
	DueTS       int64  `json:"dueTs"`
}

func (h *Deadlines) update(w http.ResponseWriter, r *http.Request) {
	var req updateDeadlineRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Deadline title is required"))
		return
	}
	if req.DueTS <= 0 {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Due date is required"))
		return
	}
	if req.Status == "" {
		req.Status = core.DeadlineOpen
	}
	if !core.ValidDeadlineStatus(req.Status) {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Status must be open, submitted, won or lost"))
		return
	}
	if _, err := ownedBudget(r, h.c, req.BudgetID); err != nil {
		writeStoreErr(w, err)
		return
	}

	d := &core.Deadline{
		ID:          chi.URLParam(r, "id"),
		BudgetID:    req.BudgetID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      req.Status,
		Link:        req.Link,
		DueTS:       req.DueTS,
	}
	if err := h.c.Repo.UpdateDeadline(r.Context(), d); err != nil {
		writeStoreErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"deadline": viewDeadline(d)})
}

type updateDeadlineStatusRequest struct {
	BudgetID string `json:"budgetId"`
	Status   string `json:"status"`
}

func (h *Deadlines) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateDeadlineStatusRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if !core.ValidDeadlineStatus(req.Status) {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Status must be open, submitted, won or lost"))
		return
	}
	if _, err := ownedBudget(r, h.c, req.BudgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.c.Repo.UpdateDeadlineStatus(r.Context(), id, req.BudgetID, req.Status); err != nil {
		writeStoreErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Deadline updated"})
}

func (h *Deadlines) remove(w http.ResponseWriter, r *http.Request) {
	budgetID := r.URL.Query().Get("budgetId")
	if budgetID == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("budgetId is required"))
		return
	}
	if _, err := ownedBudget(r, h.c, budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	if err := h.c.Repo.DeleteDeadline(r.Context(), chi.URLParam(r, "id"), budgetID); err != nil {
		writeStoreErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Deadline deleted"})
}
