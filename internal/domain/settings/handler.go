package settings

import (
	"net/http"

	"github.com/seatbook/seatbook-api/internal/pkg/errorhandler"
	"github.com/seatbook/seatbook-api/internal/pkg/response"
	"github.com/seatbook/seatbook-api/internal/pkg/validator"
)

// Handler serves admin settings endpoints
type Handler struct {
	service *Service
}

// NewHandler creates settings handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /admin/settings
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err)
		return
	}
	response.OK(w, snapshot)
}

// Update handles PUT /admin/settings
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	snapshot, err := h.service.Update(r.Context(), req)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err,
			errorhandler.Rule{Err: ErrInvalidSetting, Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: err.Error()},
		)
		return
	}
	response.OK(w, snapshot)
}
