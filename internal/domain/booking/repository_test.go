package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatbook/seatbook-api/internal/pkg/database"
	"github.com/seatbook/seatbook-api/internal/pkg/jwt"
	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
	"github.com/seatbook/seatbook-api/internal/pkg/testdb"
)

type pgFixture struct {
	db        *sqlx.DB
	repo      Repository
	userID    uuid.UUID
	libraryID uuid.UUID
	slotID    uuid.UUID
}

func newPGFixture(t *testing.T) *pgFixture {
	db := testdb.Open(t)
	owner := testdb.SeedUser(t, db, jwt.RoleLibrarian)
	lib := testdb.SeedLibrary(t, db, owner, 3)
	return &pgFixture{
		db:        db,
		repo:      NewRepository(db),
		userID:    testdb.SeedUser(t, db, jwt.RoleUser),
		libraryID: lib,
		slotID:    testdb.SeedTimeSlot(t, db, lib, "09:00", "12:00", "200.00"),
	}
}

func (f *pgFixture) booking(date, seat string) *Booking {
	d, _ := time.Parse(DateLayout, date)
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &Booking{
		ID:            uuid.New(),
		BookingCode:   "BK-TEST-" + uuid.NewString(),
		UserID:        f.userID,
		LibraryID:     f.libraryID,
		TimeSlotID:    f.slotID,
		BookingDate:   d,
		SeatNumber:    seat,
		BasePrice:     pricing.Money(20000),
		TaxAmount:     pricing.Money(3600),
		PlatformFee:   pricing.Money(500),
		TotalAmount:   pricing.Money(24100),
		PaymentStatus: PaymentPending,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	b := f.booking("2030-06-15", "A-1")
	require.NoError(t, f.repo.Create(ctx, b))

	got, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2030-06-15", got.Date())
	assert.Equal(t, pricing.Money(24100), got.TotalAmount)
	assert.Equal(t, StatusPending, got.Status)
	assert.False(t, got.OrderID.Valid)

	_, err = f.repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepositoryCreateForUnseededUser(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	// token users are never mirrored into the users table
	b := f.booking("2030-06-17", "A-1")
	b.UserID = uuid.New()
	require.NoError(t, f.repo.Create(ctx, b))

	got, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.UserID, got.UserID)
}

func TestRepositoryCreateMapsMissingReferences(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	b := f.booking("2030-06-18", "A-1")
	b.TimeSlotID = uuid.New()
	assert.ErrorIs(t, f.repo.Create(ctx, b), ErrSlotUnavailable)

	b = f.booking("2030-06-18", "A-1")
	b.LibraryID = uuid.New()
	assert.ErrorIs(t, f.repo.Create(ctx, b), ErrLibraryUnavailable)
}

func TestRepositorySetOrderIDBindsOnce(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	b := f.booking("2030-06-19", "A-1")
	require.NoError(t, f.repo.Create(ctx, b))
	require.NoError(t, f.repo.SetOrderID(ctx, b.ID, "order_1"))
	assert.ErrorIs(t, f.repo.SetOrderID(ctx, b.ID, "order_2"), ErrStateChanged)

	got, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "order_1", got.OrderID.String)
}

func TestRepositorySeatUniqueUnderConcurrency(t *testing.T) {
	f := newPGFixture(t)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.repo.Create(context.Background(), f.booking("2030-06-15", "A-1"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if !errors.Is(err, ErrSeatConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestRepositoryDuplicateBookingCode(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	first := f.booking("2030-06-15", "A-1")
	require.NoError(t, f.repo.Create(ctx, first))

	second := f.booking("2030-06-15", "A-2")
	second.BookingCode = first.BookingCode
	assert.ErrorIs(t, f.repo.Create(ctx, second), ErrDuplicateBookingCode)
}

func TestRepositoryCancelledSeatIsReusable(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	b := f.booking("2030-06-15", "A-1")
	require.NoError(t, f.repo.Create(ctx, b))
	require.NoError(t, database.WithTx(ctx, f.db, func(tx *sqlx.Tx) error {
		return f.repo.ConfirmPaymentTx(ctx, tx, b.ID, "pay_1", "razorpay", time.Now())
	}))

	require.NoError(t, f.repo.Cancel(ctx, b.ID, DefaultCancellationReason, time.Now()))
	assert.ErrorIs(t, f.repo.Cancel(ctx, b.ID, DefaultCancellationReason, time.Now()), ErrStateChanged)

	seats, err := f.repo.BookedSeats(ctx, f.libraryID, b.BookingDate, f.slotID)
	require.NoError(t, err)
	assert.Empty(t, seats)

	assert.NoError(t, f.repo.Create(ctx, f.booking("2030-06-15", "A-1")))
}

func TestRepositoryConfirmPaymentIsConditional(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	b := f.booking("2030-06-16", "A-1")
	require.NoError(t, f.repo.Create(ctx, b))
	require.NoError(t, f.repo.SetOrderID(ctx, b.ID, "order_1"))

	confirm := func() error {
		return database.WithTx(ctx, f.db, func(tx *sqlx.Tx) error {
			return f.repo.ConfirmPaymentTx(ctx, tx, b.ID, "pay_1", "razorpay", time.Now())
		})
	}
	require.NoError(t, confirm())
	assert.ErrorIs(t, confirm(), ErrStateChanged)
	assert.ErrorIs(t, f.repo.SetOrderID(ctx, b.ID, "order_2"), ErrStateChanged)

	got, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, PaymentPaid, got.PaymentStatus)
	assert.Equal(t, "order_1", got.OrderID.String)
	assert.Equal(t, "pay_1", got.PaymentID.String)
}

func TestRepositoryListFilters(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	for _, d := range []string{"2030-06-10", "2030-06-20", "2030-07-01"} {
		require.NoError(t, f.repo.Create(ctx, f.booking(d, "A-1")))
	}

	from, _ := time.Parse(DateLayout, "2030-06-01")
	to, _ := time.Parse(DateLayout, "2030-06-30")
	pending := StatusPending

	list, total, err := f.repo.List(ctx, &Filter{
		LibraryIDs: []uuid.UUID{f.libraryID},
		Status:     &pending,
		DateFrom:   &from,
		DateTo:     &to,
	}, &Pagination{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 1)

	_, total, err = f.repo.List(ctx, &Filter{LibraryIDs: []uuid.UUID{}}, &Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = f.repo.List(ctx, &Filter{UserID: &f.userID}, &Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}
