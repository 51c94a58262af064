package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/seatbook/seatbook-api/internal/domain/library"
	"github.com/seatbook/seatbook-api/internal/domain/settings"
	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

// memoryRepo applies the same uniqueness rules as the bookings indexes.
type memoryRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bookings: map[uuid.UUID]*Booking{}}
}

func seatKey(b *Booking) string {
	return b.LibraryID.String() + "|" + b.Date() + "|" + b.TimeSlotID.String() + "|" + b.SeatNumber
}

func (m *memoryRepo) put(b *Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bookings[b.ID] = &cp
}

func (m *memoryRepo) Create(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.BookingCode == b.BookingCode {
			return ErrDuplicateBookingCode
		}
		if existing.Status.Holds() && seatKey(existing) == seatKey(b) {
			return ErrSeatConflict
		}
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryRepo) SeatTaken(ctx context.Context, libraryID uuid.UUID, date time.Time, slotID uuid.UUID, seat string) (bool, error) {
	seats, _ := m.BookedSeats(ctx, libraryID, date, slotID)
	for _, s := range seats {
		if s == seat {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) BookedSeats(_ context.Context, libraryID uuid.UUID, date time.Time, slotID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	seats := []string{}
	for _, b := range m.bookings {
		if b.LibraryID == libraryID && b.TimeSlotID == slotID && b.Date() == date.Format(DateLayout) &&
			b.Status.Holds() && !seen[b.SeatNumber] {
			seen[b.SeatNumber] = true
			seats = append(seats, b.SeatNumber)
		}
	}
	sort.Strings(seats)
	return seats, nil
}

func (m *memoryRepo) List(_ context.Context, filter *Filter, pagination *Pagination) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := map[uuid.UUID]bool{}
	for _, id := range filter.LibraryIDs {
		allowed[id] = true
	}

	var matched []*Booking
	for _, b := range m.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.LibraryIDs != nil && !allowed[b.LibraryID] {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.DateFrom != nil && b.BookingDate.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && b.BookingDate.After(*filter.DateTo) {
			continue
		}
		cp := *b
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := min(pagination.offset(), total)
	end := min(start+pagination.Limit, total)
	return matched[start:end], total, nil
}

func (m *memoryRepo) Cancel(_ context.Context, id uuid.UUID, reason string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != StatusConfirmed {
		return ErrStateChanged
	}
	b.Status = StatusCancelled
	b.CancellationReason.String, b.CancellationReason.Valid = reason, true
	b.CancelledAt.Time, b.CancelledAt.Valid = at, true
	return nil
}

func (m *memoryRepo) SetOrderID(_ context.Context, id uuid.UUID, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != StatusPending || b.IsPaid() {
		return ErrStateChanged
	}
	b.OrderID.String, b.OrderID.Valid = orderID, true
	return nil
}

func (m *memoryRepo) ConfirmPaymentTx(_ context.Context, _ *sqlx.Tx, id uuid.UUID, paymentID, method string, paidAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != StatusPending || b.IsPaid() {
		return ErrStateChanged
	}
	b.Status = StatusConfirmed
	b.PaymentStatus = PaymentPaid
	b.PaymentID.String, b.PaymentID.Valid = paymentID, true
	b.PaymentMethod.String, b.PaymentMethod.Valid = method, true
	b.PaidAt.Time, b.PaidAt.Valid = paidAt, true
	return nil
}

type memoryCatalog struct {
	libraries map[uuid.UUID]*library.Library
	slots     map[uuid.UUID]*library.TimeSlot
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{libraries: map[uuid.UUID]*library.Library{}, slots: map[uuid.UUID]*library.TimeSlot{}}
}

func (c *memoryCatalog) addLibrary(owner uuid.UUID, seats int) *library.Library {
	lib := &library.Library{ID: uuid.New(), LibrarianID: owner, Name: "Central", TotalSeats: seats, IsApproved: true, IsActive: true}
	c.libraries[lib.ID] = lib
	return lib
}

func (c *memoryCatalog) addSlot(libraryID uuid.UUID, price pricing.Money) *library.TimeSlot {
	slot := &library.TimeSlot{
		ID: uuid.New(), LibraryID: libraryID, Name: "Morning",
		StartTime: "09:00", EndTime: "12:00", Price: price, MaxCapacity: 10, IsActive: true,
	}
	c.slots[slot.ID] = slot
	return slot
}

func (c *memoryCatalog) GetLibrary(_ context.Context, id uuid.UUID) (*library.Library, error) {
	lib, ok := c.libraries[id]
	if !ok {
		return nil, library.ErrLibraryNotFound
	}
	return lib, nil
}

func (c *memoryCatalog) GetTimeSlot(_ context.Context, id uuid.UUID) (*library.TimeSlot, error) {
	slot, ok := c.slots[id]
	if !ok {
		return nil, library.ErrSlotNotFound
	}
	return slot, nil
}

func (c *memoryCatalog) ListLibraryIDsByOwner(_ context.Context, owner uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, lib := range c.libraries {
		if lib.LibrarianID == owner {
			ids = append(ids, lib.ID)
		}
	}
	return ids, nil
}

type staticSettings settings.Snapshot

func (s staticSettings) Snapshot(context.Context) (settings.Snapshot, error) {
	return settings.Snapshot(s), nil
}
