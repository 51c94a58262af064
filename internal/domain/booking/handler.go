package booking

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/middleware"
	"github.com/seatbook/seatbook-api/internal/pkg/errorhandler"
	"github.com/seatbook/seatbook-api/internal/pkg/response"
	"github.com/seatbook/seatbook-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var bookingErrorRules = []errorhandler.Rule{
	{Err: ErrInvalidDate, Status: http.StatusBadRequest, Code: "INVALID_DATE"},
	{Err: ErrInvalidSeat, Status: http.StatusBadRequest, Code: "INVALID_SEAT"},
	{Err: ErrLibraryUnavailable, Status: http.StatusNotFound, Code: "LIBRARY_UNAVAILABLE"},
	{Err: ErrSlotUnavailable, Status: http.StatusNotFound, Code: "SLOT_UNAVAILABLE"},
	{Err: ErrSeatConflict, Status: http.StatusConflict, Code: "SEAT_CONFLICT"},
	{Err: ErrBookingNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
	{Err: ErrForbidden, Status: http.StatusForbidden, Code: "FORBIDDEN"},
	{Err: ErrNotConfirmed, Status: http.StatusBadRequest, Code: "NOT_CONFIRMED"},
	{Err: ErrCancellationClosed, Status: http.StatusBadRequest, Code: "CANCELLATION_WINDOW_CLOSED"},
}

// CheckAvailability handles GET /bookings/check-availability
// @Summary Seat availability for a library, date and slot
// @Tags Bookings
// @Produce json
// @Param library_id query string true "Library ID"
// @Param date query string true "YYYY-MM-DD"
// @Param time_slot_id query string true "Time slot ID"
// @Success 200 {object} response.Response{data=Availability}
// @Router /bookings/check-availability [get]
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	libraryID, err := uuid.Parse(q.Get("library_id"))
	if err != nil {
		response.BadRequest(w, "Invalid library_id")
		return
	}
	slotID, err := uuid.Parse(q.Get("time_slot_id"))
	if err != nil {
		response.BadRequest(w, "Invalid time_slot_id")
		return
	}
	date, err := ParseDate(q.Get("date"), h.service.Location())
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err, bookingErrorRules...)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), libraryID, date, slotID)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err, bookingErrorRules...)
		return
	}
	response.OK(w, availability)
}

// Create handles POST /bookings
// @Summary Book a seat
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookingRequest true "Booking"
// @Success 201 {object} response.Response{data=BookingResponse}
// @Failure 409 {object} response.Response
// @Router /bookings [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	req.SeatNumber = strings.TrimSpace(req.SeatNumber)
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	b, err := h.service.Create(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, bookingErrorRules...)
		return
	}
	response.Created(w, ResponseFromEntity(b))
}

// ListMine handles GET /bookings/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	filter, pagination, ok := h.listFilter(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	list, total, err := h.service.ListMine(ctx, middleware.GetUserID(ctx), filter.Status, pagination)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, bookingErrorRules...)
		return
	}
	response.WithMeta(w, responsesFromEntities(list), response.NewMeta(total, pagination.Page, pagination.Limit))
}

// ListForLibrarian handles GET /bookings/librarian
func (h *Handler) ListForLibrarian(w http.ResponseWriter, r *http.Request) {
	filter, pagination, ok := h.listFilter(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	list, total, err := h.service.ListForLibrarian(ctx, middleware.GetUserID(ctx), filter, pagination)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, bookingErrorRules...)
		return
	}
	response.WithMeta(w, responsesFromEntities(list), response.NewMeta(total, pagination.Page, pagination.Limit))
}

// ListAll handles GET /admin/bookings
// @Summary Every booking on the platform
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Booking status"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param library_id query string false "Library ID"
// @Success 200 {object} response.Response{data=[]BookingResponse}
// @Router /admin/bookings [get]
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter, pagination, ok := h.listFilter(w, r)
	if !ok {
		return
	}

	list, total, err := h.service.ListAll(r.Context(), filter, pagination)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err, bookingErrorRules...)
		return
	}
	response.WithMeta(w, responsesFromEntities(list), response.NewMeta(total, pagination.Page, pagination.Limit))
}

func (h *Handler) listFilter(w http.ResponseWriter, r *http.Request) (*Filter, *Pagination, bool) {
	q := r.URL.Query()
	query := listQueryFrom(q)
	if errs := validator.Validate(query); errs != nil {
		response.ValidationError(w, errs)
		return nil, nil, false
	}
	filter, err := query.Filter(h.service.Location())
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err, bookingErrorRules...)
		return nil, nil, false
	}
	return filter, parsePagination(q), true
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	ctx := r.Context()
	b, err := h.service.Get(ctx, middleware.GetUserID(ctx), middleware.GetRole(ctx), id)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, bookingErrorRules...)
		return
	}
	response.OK(w, ResponseFromEntity(b))
}

// Cancel handles PUT /bookings/{id}/cancel. The body is optional.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var req CancelRequest
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if errs := validator.Validate(&req); errs != nil {
			response.ValidationError(w, errs)
			return
		}
	}

	ctx := r.Context()
	b, err := h.service.Cancel(ctx, middleware.GetUserID(ctx), id, req.Reason)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, bookingErrorRules...)
		return
	}
	response.OK(w, ResponseFromEntity(b))
}
