package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the payment router. verifyLimit guards POST /verify.
func (h *Handler) Routes(authMiddleware, verifyLimit func(http.Handler) http.Handler) chi.Router {
	if verifyLimit == nil {
		verifyLimit = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/create-order", h.CreateOrder)
	r.With(verifyLimit).Post("/verify", h.Verify)

	return r
}
