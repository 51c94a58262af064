package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seatbook/seatbook-api/internal/middleware"
)

// Routes returns the time slot router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/library/{libraryID}", h.ListByLibrary)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireLibrarian())

		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// RegisterAdminRoutes adds library moderation to an admin-only router
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/libraries/pending", h.ListPending)
	r.Put("/libraries/{id}/approve", h.Approve)
	r.Put("/libraries/{id}/reject", h.Reject)
}
