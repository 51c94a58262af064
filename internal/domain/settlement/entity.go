package settlement

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/domain/booking"
	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

// Status of a ledger entry's payout to the librarian
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSettled    Status = "settled"
	StatusFailed     Status = "failed"
)

// Transaction is one append-only ledger entry, written when a booking's
// payment is confirmed. BookingAmount = PlatformCommission + LibrarianPayout,
// give or take one minor unit of rounding.
type Transaction struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	BookingID          uuid.UUID     `db:"booking_id" json:"booking_id"`
	LibraryID          uuid.UUID     `db:"library_id" json:"library_id"`
	UserID             uuid.UUID     `db:"user_id" json:"user_id"`
	BookingAmount      pricing.Money `db:"booking_amount" json:"booking_amount"`
	PlatformCommission pricing.Money `db:"platform_commission" json:"platform_commission"`
	LibrarianPayout    pricing.Money `db:"librarian_payout" json:"librarian_payout"`
	CommissionPercent  float64       `db:"commission_percentage" json:"commission_percentage"`
	Status             Status        `db:"settlement_status" json:"settlement_status"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
}

// NewEntry splits amount at commissionPercent into a pending ledger entry.
func NewEntry(bookingID, libraryID, userID uuid.UUID, amount pricing.Money, commissionPercent float64, at time.Time) *Transaction {
	split := pricing.CommissionSplit(amount, commissionPercent)
	return &Transaction{
		ID:                 uuid.New(),
		BookingID:          bookingID,
		LibraryID:          libraryID,
		UserID:             userID,
		BookingAmount:      split.BookingAmount,
		PlatformCommission: split.PlatformCommission,
		LibrarianPayout:    split.LibrarianPayout,
		CommissionPercent:  split.CommissionPercent,
		Status:             StatusPending,
		CreatedAt:          at,
	}
}

// LibrarySummary aggregates the ledger of one library
type LibrarySummary struct {
	LibraryID       uuid.UUID     `db:"library_id" json:"library_id"`
	LibraryName     string        `db:"library_name" json:"library_name"`
	Bookings        int           `db:"bookings" json:"total_bookings"`
	Revenue         pricing.Money `db:"revenue" json:"total_revenue"`
	Commission      pricing.Money `db:"commission" json:"total_commission"`
	LibrarianPayout pricing.Money `db:"payout" json:"total_payout"`
}

// Report is the commission report over inclusive calendar dates.
type Report struct {
	From            string            `json:"start_date,omitempty"`
	To              string            `json:"end_date,omitempty"`
	TotalBookings   int               `json:"total_bookings"`
	TotalRevenue    pricing.Money     `json:"total_revenue"`
	TotalCommission pricing.Money     `json:"total_commission"`
	TotalPayout     pricing.Money     `json:"total_payout"`
	Libraries       []*LibrarySummary `json:"library_breakdown"`
}

// newReport sums the per-library rows into totals
func newReport(from, to *time.Time, rows []*LibrarySummary) *Report {
	r := &Report{Libraries: rows}
	if from != nil {
		r.From = from.Format(booking.DateLayout)
	}
	if to != nil {
		r.To = to.Format(booking.DateLayout)
	}
	if r.Libraries == nil {
		r.Libraries = []*LibrarySummary{}
	}
	for _, row := range r.Libraries {
		r.TotalBookings += row.Bookings
		r.TotalRevenue += row.Revenue
		r.TotalCommission += row.Commission
		r.TotalPayout += row.LibrarianPayout
	}
	return r
}

// Range bounds ledger queries by created_at, [From, To)
type Range struct {
	From *time.Time
	To   *time.Time
}
