package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/domain/library"
)

// Availability is a point-in-time seat count for one library, date and slot
type Availability struct {
	LibraryID      uuid.UUID `json:"library_id"`
	TimeSlotID     uuid.UUID `json:"time_slot_id"`
	Date           string    `json:"date"`
	TotalSeats     int       `json:"total_seats"`
	BookedSeats    []string  `json:"booked_seats"`
	BookedCount    int       `json:"booked_count"`
	AvailableSeats int       `json:"available_seats"`
}

// CheckAvailability counts seats held by pending or confirmed bookings.
// It takes no locks; the result may be stale by the time it is used.
func (s *Service) CheckAvailability(ctx context.Context, libraryID uuid.UUID, date time.Time, slotID uuid.UUID) (*Availability, error) {
	lib, err := s.catalog.GetLibrary(ctx, libraryID)
	if err != nil {
		if errors.Is(err, library.ErrLibraryNotFound) {
			return nil, ErrLibraryUnavailable
		}
		return nil, err
	}

	slot, err := s.catalog.GetTimeSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, library.ErrSlotNotFound) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}
	if slot.LibraryID != lib.ID {
		return nil, ErrSlotUnavailable
	}

	day := civilDate(date)
	booked, err := s.repo.BookedSeats(ctx, lib.ID, day, slot.ID)
	if err != nil {
		return nil, err
	}

	available := lib.TotalSeats - len(booked)
	if available < 0 {
		available = 0
	}

	return &Availability{
		LibraryID:      lib.ID,
		TimeSlotID:     slot.ID,
		Date:           day.Format(DateLayout),
		TotalSeats:     lib.TotalSeats,
		BookedSeats:    booked,
		BookedCount:    len(booked),
		AvailableSeats: available,
	}, nil
}
