package payment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatbook/seatbook-api/internal/domain/booking"
	"github.com/seatbook/seatbook-api/internal/domain/settlement"
	"github.com/seatbook/seatbook-api/internal/pkg/jwt"
	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
	"github.com/seatbook/seatbook-api/internal/pkg/testdb"
)

func TestConfirmerCommitsBookingAndLedgerTogether(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	owner := testdb.SeedUser(t, db, jwt.RoleLibrarian)
	user := testdb.SeedUser(t, db, jwt.RoleUser)
	libraryID := testdb.SeedLibrary(t, db, owner, 5)
	slotID := testdb.SeedTimeSlot(t, db, libraryID, "09:00", "12:00", "200.00")

	bookings := booking.NewRepository(db)
	ledger := settlement.NewRepository(db)
	confirmer := NewConfirmer(db, bookings, ledger)

	newBooking := func(seat string) *booking.Booking {
		now := time.Now().UTC()
		b := &booking.Booking{
			ID: uuid.New(), BookingCode: "BK-PAY-" + uuid.NewString(),
			UserID: user, LibraryID: libraryID, TimeSlotID: slotID,
			BookingDate: time.Date(2030, 8, 1, 0, 0, 0, 0, time.UTC), SeatNumber: seat,
			BasePrice: 20000, TaxAmount: 3600, PlatformFee: 500, TotalAmount: pricing.Money(24100),
			Status: booking.StatusPending, PaymentStatus: booking.PaymentPending,
			CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, bookings.Create(ctx, b))
		return b
	}

	t.Run("commit", func(t *testing.T) {
		b := newBooking("P-1")

		entry, err := confirmer.ConfirmWithLedger(ctx, b, "pay_commit", time.Now(), 10)
		require.NoError(t, err)
		assert.Equal(t, "24.10", entry.PlatformCommission.String())

		stored, err := bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusConfirmed, stored.Status)
		assert.Equal(t, Method, stored.PaymentMethod.String)

		_, err = confirmer.ConfirmWithLedger(ctx, b, "pay_commit", time.Now(), 10)
		assert.ErrorIs(t, err, booking.ErrStateChanged)
	})

	t.Run("ledger conflict rolls back booking", func(t *testing.T) {
		b := newBooking("P-2")

		_, err := db.Exec(`
			INSERT INTO transactions (id, booking_id, library_id, user_id, booking_amount,
				platform_commission, librarian_payout, commission_percentage)
			VALUES ($1, $2, $3, $4, 241, 24.10, 216.90, 10)
		`, uuid.New(), b.ID, libraryID, user)
		require.NoError(t, err)

		_, err = confirmer.ConfirmWithLedger(ctx, b, "pay_rollback", time.Now(), 10)
		assert.ErrorIs(t, err, ErrLedgerWrite)
		assert.ErrorIs(t, err, settlement.ErrDuplicateEntry)

		stored, err := bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusPending, stored.Status)
		assert.False(t, stored.IsPaid())
	})
}
