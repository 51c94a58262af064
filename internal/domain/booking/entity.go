package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

// Status represents booking status (matches bookings.booking_status)
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no-show"
)

// Holds reports whether a booking in this status occupies its seat.
func (s Status) Holds() bool {
	return s == StatusPending || s == StatusConfirmed
}

// PaymentStatus represents booking payment status
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const DateLayout = "2006-01-02"

// DefaultCancellationReason is stored when the user gives none
const DefaultCancellationReason = "User cancelled"

// Booking reserves one seat of a library for one slot on one date.
// Price fields are fixed at creation.
type Booking struct {
	ID          uuid.UUID `db:"id"`
	BookingCode string    `db:"booking_code"`
	UserID      uuid.UUID `db:"user_id"`
	LibraryID   uuid.UUID `db:"library_id"`
	TimeSlotID  uuid.UUID `db:"time_slot_id"`
	BookingDate time.Time `db:"booking_date"`
	SeatNumber  string    `db:"seat_number"`

	BasePrice   pricing.Money `db:"base_price"`
	TaxAmount   pricing.Money `db:"tax_amount"`
	PlatformFee pricing.Money `db:"platform_fee"`
	TotalAmount pricing.Money `db:"total_amount"`

	PaymentStatus PaymentStatus  `db:"payment_status"`
	Status        Status         `db:"booking_status"`
	OrderID       sql.NullString `db:"order_id"`
	PaymentID     sql.NullString `db:"payment_id"`
	PaymentMethod sql.NullString `db:"payment_method"`
	PaidAt        sql.NullTime   `db:"paid_at"`

	CancellationReason sql.NullString `db:"cancellation_reason"`
	CancelledAt        sql.NullTime   `db:"cancelled_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsPaid reports whether payment has been captured
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentPaid
}

// Date returns the booking date as YYYY-MM-DD
func (b *Booking) Date() string {
	return b.BookingDate.Format(DateLayout)
}

// Filter narrows booking listings
type Filter struct {
	UserID     *uuid.UUID
	LibraryIDs []uuid.UUID
	Status     *Status
	DateFrom   *time.Time
	DateTo     *time.Time
}

// Pagination for listing
type Pagination struct {
	Page  int
	Limit int
}

func (p *Pagination) offset() int {
	return (p.Page - 1) * p.Limit
}
