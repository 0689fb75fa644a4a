package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/http/middlewares"
	"github.com/hknclub/budgethq/internal/store/core"
)

type Admin struct {
	c *app.Container
}

func NewAdmin(c *app.Container) *Admin { return &Admin{c: c} }

func (h *Admin) Register(r chi.Router) {
	r.Route("/admin", func(g chi.Router) {
		g.Use(middlewares.RequireRole(core.RoleAdmin))
		g.Get("/users", h.listUsers)
	})
}

func (h *Admin) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.c.Repo.ListUsers(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewUser(u))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"users": views})
}
