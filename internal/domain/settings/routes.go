package settings

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the admin settings router. The caller applies admin auth.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	return r
}
