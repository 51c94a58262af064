package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/middleware"
	"github.com/seatbook/seatbook-api/internal/pkg/errorhandler"
	"github.com/seatbook/seatbook-api/internal/pkg/response"
	"github.com/seatbook/seatbook-api/internal/pkg/validator"
)

// Handler handles time slot HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates time slot handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var slotErrorRules = []errorhandler.Rule{
	{Err: ErrLibraryNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
	{Err: ErrSlotNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
	{Err: ErrNotOwner, Status: http.StatusForbidden, Code: "FORBIDDEN"},
	{Err: ErrInvalidTimeRange, Status: http.StatusBadRequest, Code: "BAD_REQUEST"},
	{Err: ErrInvalidPrice, Status: http.StatusBadRequest, Code: "BAD_REQUEST"},
	{Err: ErrSlotOverlap, Status: http.StatusConflict, Code: "SLOT_OVERLAP"},
}

var libraryErrorRules = []errorhandler.Rule{
	{Err: ErrLibraryNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
	{Err: ErrAlreadyApproved, Status: http.StatusConflict, Code: "ALREADY_APPROVED"},
}

// ListByLibrary handles GET /time-slots/library/{libraryID}
// @Summary Active time slots of a library
// @Tags TimeSlots
// @Produce json
// @Param libraryID path string true "Library ID"
// @Success 200 {object} response.Response{data=[]TimeSlotResponse}
// @Failure 404 {object} response.Response
// @Router /time-slots/library/{libraryID} [get]
func (h *Handler) ListByLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID, err := uuid.Parse(chi.URLParam(r, "libraryID"))
	if err != nil {
		response.BadRequest(w, "Invalid library ID")
		return
	}

	slots, err := h.service.ListTimeSlots(r.Context(), libraryID)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err, slotErrorRules...)
		return
	}

	items := make([]*TimeSlotResponse, len(slots))
	for i, s := range slots {
		items[i] = TimeSlotResponseFromEntity(s)
	}
	response.OK(w, items)
}

// Create handles POST /time-slots
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTimeSlotRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	slot, err := h.service.CreateTimeSlot(ctx, middleware.GetUserID(ctx), middleware.GetRole(ctx), &req)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, slotErrorRules...)
		return
	}
	response.Created(w, TimeSlotResponseFromEntity(slot))
}

// Update handles PUT /time-slots/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid time slot ID")
		return
	}

	var req UpdateTimeSlotRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	slot, err := h.service.UpdateTimeSlot(ctx, middleware.GetUserID(ctx), middleware.GetRole(ctx), id, &req)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, slotErrorRules...)
		return
	}
	response.OK(w, TimeSlotResponseFromEntity(slot))
}

// Delete handles DELETE /time-slots/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid time slot ID")
		return
	}

	ctx := r.Context()
	if err := h.service.DeleteTimeSlot(ctx, middleware.GetUserID(ctx), middleware.GetRole(ctx), id); err != nil {
		errorhandler.HandleDomainError(ctx, w, err, slotErrorRules...)
		return
	}
	response.OK(w, map[string]string{"message": "Time slot deleted"})
}

// ListPending handles GET /admin/libraries/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	libs, err := h.service.ListPendingLibraries(r.Context())
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err, libraryErrorRules...)
		return
	}

	items := make([]*LibraryResponse, len(libs))
	for i, l := range libs {
		items[i] = LibraryResponseFromEntity(l)
	}
	response.OK(w, items)
}

// Approve handles PUT /admin/libraries/{id}/approve
// @Summary Approve a library for bookings
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Library ID"
// @Success 200 {object} response.Response{data=LibraryResponse}
// @Failure 409 {object} response.Response
// @Router /admin/libraries/{id}/approve [put]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid library ID")
		return
	}

	ctx := r.Context()
	lib, err := h.service.ApproveLibrary(ctx, middleware.GetUserID(ctx), id)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, libraryErrorRules...)
		return
	}
	response.OK(w, LibraryResponseFromEntity(lib))
}

// Reject handles PUT /admin/libraries/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid library ID")
		return
	}

	var req RejectLibraryRequest
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	lib, err := h.service.RejectLibrary(ctx, middleware.GetUserID(ctx), id, req.Reason)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, libraryErrorRules...)
		return
	}
	response.OK(w, LibraryResponseFromEntity(lib))
}
