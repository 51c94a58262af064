package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seatbook/seatbook-api/internal/middleware"
)

// Routes returns the booking router. createLimit guards POST /.
func (h *Handler) Routes(authMiddleware, createLimit func(http.Handler) http.Handler) chi.Router {
	if createLimit == nil {
		createLimit = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()

	r.Get("/check-availability", h.CheckAvailability)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(createLimit).Post("/", h.Create)
		r.Get("/my", h.ListMine)
		r.With(middleware.RequireLibrarian()).Get("/librarian", h.ListForLibrarian)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/cancel", h.Cancel)
	})

	return r
}
