package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	constraintActiveSeat  = "bookings_active_seat_key"
	constraintBookingCode = "bookings_booking_code_key"
	constraintLibraryFK   = "bookings_library_id_fkey"
	constraintTimeSlotFK  = "bookings_time_slot_id_fkey"
)

// ErrStateChanged is returned by conditional updates that matched no row
var ErrStateChanged = errors.New("booking state changed concurrently")

// Repository defines booking data access
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	SeatTaken(ctx context.Context, libraryID uuid.UUID, date time.Time, slotID uuid.UUID, seat string) (bool, error)
	BookedSeats(ctx context.Context, libraryID uuid.UUID, date time.Time, slotID uuid.UUID) ([]string, error)
	List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Booking, int, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
	SetOrderID(ctx context.Context, id uuid.UUID, orderID string) error
	ConfirmPaymentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, paymentID, method string, paidAt time.Time) error
}

type repository struct {
	db *sqlx.DB
}

var bookingColumns = []any{
	"id", "booking_code", "user_id", "library_id", "time_slot_id", "booking_date", "seat_number",
	"base_price", "tax_amount", "platform_fee", "total_amount",
	"payment_status", "booking_status", "order_id", "payment_id", "payment_method", "paid_at",
	"cancellation_reason", "cancelled_at", "created_at", "updated_at",
}

const bookingSelectColumns = `
	id, booking_code, user_id, library_id, time_slot_id, booking_date, seat_number,
	base_price, tax_amount, platform_fee, total_amount,
	payment_status, booking_status, order_id, payment_id, payment_method, paid_at,
	cancellation_reason, cancelled_at, created_at, updated_at
`

// NewRepository creates booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bookings (
			id, booking_code, user_id, library_id, time_slot_id, booking_date, seat_number,
			base_price, tax_amount, platform_fee, total_amount,
			payment_status, booking_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		b.ID, b.BookingCode, b.UserID, b.LibraryID, b.TimeSlotID, b.Date(), b.SeatNumber,
		b.BasePrice, b.TaxAmount, b.PlatformFee, b.TotalAmount,
		string(b.PaymentStatus), string(b.Status), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return mapCreateDBError(err)
	}
	return nil
}

// mapCreateDBError translates unique violations on the seat key and the
// booking code, and foreign keys on the library and slot, into domain errors.
func mapCreateDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505":
		constraint := strings.ToLower(pqErr.Constraint)
		switch {
		case constraint == constraintBookingCode || strings.Contains(constraint, "booking_code"):
			return fmt.Errorf("%w: %w", ErrDuplicateBookingCode, err)
		default:
			return fmt.Errorf("%w: %w", ErrSeatConflict, err)
		}
	case "23503":
		switch pqErr.Constraint {
		case constraintLibraryFK:
			return fmt.Errorf("%w: %w", ErrLibraryUnavailable, err)
		case constraintTimeSlotFK:
			return fmt.Errorf("%w: %w", ErrSlotUnavailable, err)
		default:
			return err
		}
	default:
		return err
	}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingSelectColumns+` FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) SeatTaken(ctx context.Context, libraryID uuid.UUID, date time.Time, slotID uuid.UUID, seat string) (bool, error) {
	var taken bool
	err := r.db.GetContext(ctx, &taken, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE library_id = $1 AND booking_date = $2::date AND time_slot_id = $3 AND seat_number = $4
			  AND booking_status IN ('pending', 'confirmed')
		)
	`, libraryID, date.Format(DateLayout), slotID, seat)
	return taken, err
}

func (r *repository) BookedSeats(ctx context.Context, libraryID uuid.UUID, date time.Time, slotID uuid.UUID) ([]string, error) {
	seats := []string{}
	err := r.db.SelectContext(ctx, &seats, `
		SELECT DISTINCT seat_number FROM bookings
		WHERE library_id = $1 AND booking_date = $2::date AND time_slot_id = $3
		  AND booking_status IN ('pending', 'confirmed')
		ORDER BY seat_number
	`, libraryID, date.Format(DateLayout), slotID)
	return seats, err
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Booking, int, error) {
	where := listConditions(filter)

	countSQL, countArgs, err := goqu.Dialect("postgres").
		From("bookings").
		Select(goqu.COUNT("*")).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	selectSQL, selectArgs, err := goqu.Dialect("postgres").
		From("bookings").
		Select(bookingColumns...).
		Where(where...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc()).
		Limit(uint(pagination.Limit)).
		Offset(uint(pagination.offset())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	bookings := []*Booking{}
	if err := r.db.SelectContext(ctx, &bookings, selectSQL, selectArgs...); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func listConditions(filter *Filter) []goqu.Expression {
	var where []goqu.Expression
	if filter == nil {
		return where
	}
	if filter.UserID != nil {
		where = append(where, goqu.C("user_id").Eq(*filter.UserID))
	}
	if filter.LibraryIDs != nil {
		ids := make([]any, len(filter.LibraryIDs))
		for i, id := range filter.LibraryIDs {
			ids[i] = id
		}
		if len(ids) == 0 {
			// no owned libraries, nothing can match
			where = append(where, goqu.L("FALSE"))
		} else {
			where = append(where, goqu.C("library_id").In(ids...))
		}
	}
	if filter.Status != nil {
		where = append(where, goqu.C("booking_status").Eq(string(*filter.Status)))
	}
	if filter.DateFrom != nil {
		where = append(where, goqu.C("booking_date").Gte(goqu.L("?::date", filter.DateFrom.Format(DateLayout))))
	}
	if filter.DateTo != nil {
		where = append(where, goqu.C("booking_date").Lte(goqu.L("?::date", filter.DateTo.Format(DateLayout))))
	}
	return where
}

// Cancel moves a confirmed booking to cancelled. The status predicate makes
// concurrent cancels race-free: only one can match.
func (r *repository) Cancel(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET booking_status = 'cancelled', cancellation_reason = $2, cancelled_at = $3, updated_at = $3
		WHERE id = $1 AND booking_status = 'confirmed'
	`, id, reason, at)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStateChanged
	}
	return nil
}

// SetOrderID binds the first gateway order to a pending booking. Later
// calls match no row.
func (r *repository) SetOrderID(ctx context.Context, id uuid.UUID, orderID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET order_id = $2, updated_at = now()
		WHERE id = $1 AND booking_status = 'pending' AND payment_status <> 'paid' AND order_id IS NULL
	`, id, orderID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStateChanged
	}
	return nil
}

// ConfirmPaymentTx marks a pending booking paid and confirmed inside tx.
func (r *repository) ConfirmPaymentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, paymentID, method string, paidAt time.Time) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET payment_status = 'paid', booking_status = 'confirmed',
		    payment_id = $2, payment_method = $3, paid_at = $4, updated_at = $4
		WHERE id = $1 AND booking_status = 'pending' AND payment_status <> 'paid'
	`, id, paymentID, method, paidAt)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStateChanged
	}
	return nil
}
