package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/seatbook/seatbook-api/internal/domain/booking"
	"github.com/seatbook/seatbook-api/internal/domain/settlement"
	"github.com/seatbook/seatbook-api/internal/pkg/database"
	"github.com/seatbook/seatbook-api/internal/pkg/logger"
)

// Confirmer marks a booking paid and appends its ledger entry atomically
type Confirmer interface {
	ConfirmWithLedger(ctx context.Context, b *booking.Booking, paymentID string, paidAt time.Time, commissionPercent float64) (*settlement.Transaction, error)
}

type txConfirmer struct {
	db       *sqlx.DB
	bookings booking.Repository
	ledger   settlement.Repository
}

// NewConfirmer creates the transactional confirmer
func NewConfirmer(db *sqlx.DB, bookings booking.Repository, ledger settlement.Repository) Confirmer {
	return &txConfirmer{db: db, bookings: bookings, ledger: ledger}
}

// ConfirmWithLedger runs both writes in one READ COMMITTED transaction.
// booking.ErrStateChanged means the booking was no longer pending.
func (c *txConfirmer) ConfirmWithLedger(ctx context.Context, b *booking.Booking, paymentID string, paidAt time.Time, commissionPercent float64) (*settlement.Transaction, error) {
	entry := settlement.NewEntry(b.ID, b.LibraryID, b.UserID, b.TotalAmount, commissionPercent, paidAt)

	err := database.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		if err := c.bookings.ConfirmPaymentTx(ctx, tx, b.ID, paymentID, Method, paidAt); err != nil {
			return err
		}
		if err := c.ledger.CreateTx(ctx, tx, entry); err != nil {
			logger.FromContext(ctx).Error().
				Err(err).
				Bool("integrity", true).
				Str("booking_id", b.ID.String()).
				Str("payment_id", paymentID).
				Msg("Ledger insert failed, payment confirmation rolled back")
			return fmt.Errorf("%w: %w", ErrLedgerWrite, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
