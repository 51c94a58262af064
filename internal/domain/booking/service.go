package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/domain/library"
	"github.com/seatbook/seatbook-api/internal/domain/settings"
	"github.com/seatbook/seatbook-api/internal/pkg/events"
	"github.com/seatbook/seatbook-api/internal/pkg/jwt"
	"github.com/seatbook/seatbook-api/internal/pkg/logger"
	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
	"github.com/seatbook/seatbook-api/internal/pkg/retry"
)

const maxCodeAttempts = 5

// Catalog resolves libraries and time slots
type Catalog interface {
	GetLibrary(ctx context.Context, id uuid.UUID) (*library.Library, error)
	GetTimeSlot(ctx context.Context, id uuid.UUID) (*library.TimeSlot, error)
	ListLibraryIDsByOwner(ctx context.Context, librarianID uuid.UUID) ([]uuid.UUID, error)
}

// SettingsProvider returns the platform settings in effect
type SettingsProvider interface {
	Snapshot(ctx context.Context) (settings.Snapshot, error)
}

// Service implements the booking lifecycle
type Service struct {
	repo     Repository
	catalog  Catalog
	settings SettingsProvider
	events   events.Publisher
	loc      *time.Location
	now      func() time.Time
	newCode  func(now time.Time) string
}

// NewService creates booking service. loc is the zone booking dates are
// interpreted in.
func NewService(repo Repository, catalog Catalog, settingsProvider SettingsProvider, publisher events.Publisher, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	s := &Service{
		repo:     repo,
		catalog:  catalog,
		settings: settingsProvider,
		events:   publisher,
		loc:      loc,
		now:      time.Now,
	}
	s.newCode = s.generateCode
	return s
}

// Create reserves a seat. Preconditions are checked in order: date, library,
// slot, seat. The seat check here is a fast path; the unique index decides.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateBookingRequest) (*Booking, error) {
	seat := strings.TrimSpace(req.SeatNumber)
	if seat == "" {
		return nil, ErrInvalidSeat
	}

	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	date, err := ParseDate(req.BookingDate, s.loc)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := validateBookingDate(date, now, s.loc, snapshot.MaxAdvanceBookingDays); err != nil {
		return nil, err
	}

	lib, err := s.catalog.GetLibrary(ctx, req.LibraryID)
	if err != nil {
		if errors.Is(err, library.ErrLibraryNotFound) {
			return nil, ErrLibraryUnavailable
		}
		return nil, err
	}
	if !lib.Bookable() {
		return nil, ErrLibraryUnavailable
	}

	slot, err := s.catalog.GetTimeSlot(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, library.ErrSlotNotFound) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	if !slot.IsActive || slot.LibraryID != lib.ID {
		return nil, ErrSlotUnavailable
	}

	taken, err := s.repo.SeatTaken(ctx, lib.ID, date, slot.ID, seat)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSeatConflict
	}

	price := pricing.PriceBreakdown(slot.Price, snapshot.Rates())
	b := &Booking{
		ID:            uuid.New(),
		UserID:        userID,
		LibraryID:     lib.ID,
		TimeSlotID:    slot.ID,
		BookingDate:   date,
		SeatNumber:    seat,
		BasePrice:     price.BasePrice,
		TaxAmount:     price.TaxAmount,
		PlatformFee:   price.PlatformFee,
		TotalAmount:   price.TotalAmount,
		PaymentStatus: PaymentPending,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = retry.Do(ctx, func(ctx context.Context) error {
		b.BookingCode = s.newCode(now)
		return s.repo.Create(ctx, b)
	}, func(err error) bool {
		return errors.Is(err, ErrDuplicateBookingCode)
	}, retry.WithMaxAttempts(maxCodeAttempts))
	if err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Booking created",
		"booking_id", b.ID.String(),
		"booking_code", b.BookingCode,
		"library_id", lib.ID.String(),
		"seat", seat,
		"date", b.Date(),
	)
	s.publish(ctx, events.BookingCreated, b)
	return b, nil
}

// Cancel cancels a confirmed booking owned by userID while the
// cancellation window is open.
func (s *Service) Cancel(ctx context.Context, userID, bookingID uuid.UUID, reason string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	if b.Status != StatusConfirmed {
		return nil, ErrNotConfirmed
	}

	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	now := s.now()
	if hoursUntil(b.BookingDate, now, s.loc) <= float64(snapshot.CancellationWindowHours) {
		return nil, fmt.Errorf("%w: bookings can only be cancelled more than %d hours before the booking date",
			ErrCancellationClosed, snapshot.CancellationWindowHours)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCancellationReason
	}

	if err := s.repo.Cancel(ctx, b.ID, reason, now); err != nil {
		if errors.Is(err, ErrStateChanged) {
			return nil, ErrNotConfirmed
		}
		return nil, err
	}

	b.Status = StatusCancelled
	b.CancellationReason.String, b.CancellationReason.Valid = reason, true
	b.CancelledAt.Time, b.CancelledAt.Valid = now, true
	b.UpdatedAt = now

	logger.LogInfo(ctx, "Booking cancelled", "booking_id", b.ID.String(), "reason", reason)
	s.publish(ctx, events.BookingCancelled, b)
	return b, nil
}

// Get returns a booking visible to the caller: its owner, the librarian of
// its library, or an admin.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, role string, bookingID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case b.UserID == userID, role == jwt.RoleAdmin:
		return b, nil
	case role == jwt.RoleLibrarian:
		lib, err := s.catalog.GetLibrary(ctx, b.LibraryID)
		if err != nil {
			return nil, err
		}
		if lib.OwnedBy(userID) {
			return b, nil
		}
	}
	return nil, ErrForbidden
}

// ListMine lists the caller's bookings, newest first
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, status *Status, pagination *Pagination) ([]*Booking, int, error) {
	return s.repo.List(ctx, &Filter{UserID: &userID, Status: status}, pagination)
}

// ListForLibrarian lists bookings across every library the caller owns
func (s *Service) ListForLibrarian(ctx context.Context, librarianID uuid.UUID, filter *Filter, pagination *Pagination) ([]*Booking, int, error) {
	ids, err := s.catalog.ListLibraryIDsByOwner(ctx, librarianID)
	if err != nil {
		return nil, 0, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	scoped := *filter
	scoped.LibraryIDs = ids
	if len(filter.LibraryIDs) > 0 {
		scoped.LibraryIDs = intersectIDs(ids, filter.LibraryIDs)
	}
	scoped.UserID = nil
	return s.repo.List(ctx, &scoped, pagination)
}

// ListAll lists bookings across the platform for administrators
func (s *Service) ListAll(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter, pagination)
}

// intersectIDs keeps the ids of want that also appear in owned. The result
// is never nil so an empty intersection still restricts the listing.
func intersectIDs(owned, want []uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{}
	for _, id := range want {
		if slices.Contains(owned, id) {
			out = append(out, id)
		}
	}
	return out
}

// Location is the zone booking dates are interpreted in
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) publish(ctx context.Context, routingKey string, b *Booking) {
	if err := s.events.Publish(ctx, routingKey, NewEvent(b)); err != nil {
		logger.LogWarn(ctx, "Booking event publish failed", "event", routingKey, "booking_id", b.ID.String(), "error", err.Error())
	}
}

// generateCode returns BK-YYYYMMDD-NNNNN using the creation date in loc.
func (s *Service) generateCode(now time.Time) string {
	return fmt.Sprintf("BK-%s-%05d", now.In(s.loc).Format("20060102"), 10000+rand.IntN(90000))
}
