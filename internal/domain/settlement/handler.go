package settlement

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/domain/booking"
	"github.com/seatbook/seatbook-api/internal/pkg/errorhandler"
	"github.com/seatbook/seatbook-api/internal/pkg/response"
	"github.com/seatbook/seatbook-api/internal/pkg/validator"
)

// Handler serves admin ledger endpoints
type Handler struct {
	service *Service
}

// NewHandler creates settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var ledgerErrorRules = []errorhandler.Rule{
	{Err: ErrInvalidRange, Status: http.StatusBadRequest, Code: "BAD_REQUEST"},
}

// CommissionReport handles GET /admin/commission-report
// @Summary Platform commission report
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD, inclusive"
// @Success 200 {object} response.Response{data=Report}
// @Router /admin/commission-report [get]
func (h *Handler) CommissionReport(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseDates(w, r)
	if !ok {
		return
	}

	report, err := h.service.CommissionReport(r.Context(), from, to)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err, ledgerErrorRules...)
		return
	}
	response.OK(w, report)
}

// ListByLibrary handles GET /admin/libraries/{id}/transactions
func (h *Handler) ListByLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid library ID")
		return
	}
	from, to, ok := h.parseDates(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	entries, total, err := h.service.ListByLibrary(r.Context(), libraryID, from, to, page, limit)
	if err != nil {
		errorhandler.HandleDomainError(r.Context(), w, err, ledgerErrorRules...)
		return
	}
	response.WithMeta(w, entries, response.NewMeta(total, page, limit))
}

// RangeQuery is the date filter of ledger reports. end_date is inclusive.
type RangeQuery struct {
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
}

func (h *Handler) parseDates(w http.ResponseWriter, r *http.Request) (from, to *time.Time, ok bool) {
	q := RangeQuery{StartDate: r.URL.Query().Get("start_date"), EndDate: r.URL.Query().Get("end_date")}
	if errs := validator.Validate(&q); errs != nil {
		response.ValidationError(w, errs)
		return nil, nil, false
	}

	var err error
	if from, err = booking.ParseOptionalDate(q.StartDate, h.service.loc); err != nil {
		response.BadRequest(w, err.Error())
		return nil, nil, false
	}
	if to, err = booking.ParseOptionalDate(q.EndDate, h.service.loc); err != nil {
		response.BadRequest(w, err.Error())
		return nil, nil, false
	}
	return from, to, true
}
