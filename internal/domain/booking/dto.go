package booking

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// CreateBookingRequest is the body of POST /bookings.
// BookingDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
type CreateBookingRequest struct {
	LibraryID   uuid.UUID `json:"library_id" validate:"required"`
	TimeSlotID  uuid.UUID `json:"time_slot_id" validate:"required"`
	BookingDate string    `json:"booking_date" validate:"required"`
	SeatNumber  string    `json:"seat_number" validate:"required,max=20"`
}

// CancelRequest is the optional body of PUT /bookings/{id}/cancel
type CancelRequest struct {
	Reason string `json:"cancellation_reason" validate:"max=500"`
}

// BookingResponse is the API view of a booking
type BookingResponse struct {
	ID                 uuid.UUID     `json:"id"`
	BookingCode        string        `json:"booking_code"`
	UserID             uuid.UUID     `json:"user_id"`
	LibraryID          uuid.UUID     `json:"library_id"`
	TimeSlotID         uuid.UUID     `json:"time_slot_id"`
	BookingDate        string        `json:"booking_date"`
	SeatNumber         string        `json:"seat_number"`
	BasePrice          pricing.Money `json:"base_price"`
	TaxAmount          pricing.Money `json:"tax_amount"`
	PlatformFee        pricing.Money `json:"platform_fee"`
	TotalAmount        pricing.Money `json:"total_amount"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	Status             Status        `json:"booking_status"`
	OrderID            *string       `json:"order_id,omitempty"`
	PaymentID          *string       `json:"payment_id,omitempty"`
	PaymentMethod      *string       `json:"payment_method,omitempty"`
	PaidAt             *time.Time    `json:"paid_at,omitempty"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

// ResponseFromEntity converts a booking for the API
func ResponseFromEntity(b *Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:            b.ID,
		BookingCode:   b.BookingCode,
		UserID:        b.UserID,
		LibraryID:     b.LibraryID,
		TimeSlotID:    b.TimeSlotID,
		BookingDate:   b.Date(),
		SeatNumber:    b.SeatNumber,
		BasePrice:     b.BasePrice,
		TaxAmount:     b.TaxAmount,
		PlatformFee:   b.PlatformFee,
		TotalAmount:   b.TotalAmount,
		PaymentStatus: b.PaymentStatus,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
	if b.OrderID.Valid {
		resp.OrderID = &b.OrderID.String
	}
	if b.PaymentID.Valid {
		resp.PaymentID = &b.PaymentID.String
	}
	if b.PaymentMethod.Valid {
		resp.PaymentMethod = &b.PaymentMethod.String
	}
	if b.PaidAt.Valid {
		resp.PaidAt = &b.PaidAt.Time
	}
	if b.CancellationReason.Valid {
		resp.CancellationReason = &b.CancellationReason.String
	}
	if b.CancelledAt.Valid {
		resp.CancelledAt = &b.CancelledAt.Time
	}
	return resp
}

func responsesFromEntities(list []*Booking) []*BookingResponse {
	items := make([]*BookingResponse, len(list))
	for i, b := range list {
		items[i] = ResponseFromEntity(b)
	}
	return items
}

// Event is the payload of booking lifecycle messages
type Event struct {
	BookingID   uuid.UUID     `json:"booking_id"`
	BookingCode string        `json:"booking_code"`
	UserID      uuid.UUID     `json:"user_id"`
	LibraryID   uuid.UUID     `json:"library_id"`
	TimeSlotID  uuid.UUID     `json:"time_slot_id"`
	BookingDate string        `json:"booking_date"`
	SeatNumber  string        `json:"seat_number"`
	Status      Status        `json:"booking_status"`
	TotalAmount pricing.Money `json:"total_amount"`
}

// NewEvent builds the event payload for b
func NewEvent(b *Booking) Event {
	return Event{
		BookingID:   b.ID,
		BookingCode: b.BookingCode,
		UserID:      b.UserID,
		LibraryID:   b.LibraryID,
		TimeSlotID:  b.TimeSlotID,
		BookingDate: b.Date(),
		SeatNumber:  b.SeatNumber,
		Status:      b.Status,
		TotalAmount: b.TotalAmount,
	}
}

// parsePagination reads page and limit, defaulting to 1 and 20
func parsePagination(q url.Values) *Pagination {
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return &Pagination{Page: page, Limit: limit}
}

// ListQuery is the query string shared by the booking listings
type ListQuery struct {
	Status    string `json:"status" validate:"omitempty,booking_status"`
	StartDate string `json:"start_date" validate:"omitempty,isodate"`
	EndDate   string `json:"end_date" validate:"omitempty,isodate"`
	LibraryID string `json:"library_id" validate:"omitempty,uuid"`
}

func listQueryFrom(q url.Values) *ListQuery {
	return &ListQuery{
		Status:    q.Get("status"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		LibraryID: q.Get("library_id"),
	}
}

// Filter converts a validated query into a listing filter. Dates are
// calendar dates in loc.
func (q *ListQuery) Filter(loc *time.Location) (*Filter, error) {
	filter := &Filter{}
	if q.Status != "" {
		status := Status(q.Status)
		filter.Status = &status
	}

	var err error
	if filter.DateFrom, err = ParseOptionalDate(q.StartDate, loc); err != nil {
		return nil, err
	}
	if filter.DateTo, err = ParseOptionalDate(q.EndDate, loc); err != nil {
		return nil, err
	}

	if q.LibraryID != "" {
		id, err := uuid.Parse(q.LibraryID)
		if err != nil {
			return nil, fmt.Errorf("invalid library_id: %w", err)
		}
		filter.LibraryIDs = []uuid.UUID{id}
	}
	return filter, nil
}
