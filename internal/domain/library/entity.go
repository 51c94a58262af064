package library

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

// Library is a bookable reading space owned by a librarian
type Library struct {
	ID           uuid.UUID      `db:"id"`
	LibrarianID  uuid.UUID      `db:"librarian_id"`
	Name         string         `db:"name"`
	Address      string         `db:"address"`
	TotalSeats   int            `db:"total_seats"`
	PricePerHour pricing.Money  `db:"price_per_hour"`
	IsApproved   bool           `db:"is_approved"`
	IsActive     bool           `db:"is_active"`
	ApprovedBy   uuid.NullUUID  `db:"approved_by"`
	ApprovedAt   sql.NullTime   `db:"approved_at"`
	Rejection    sql.NullString `db:"rejection_reason"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Pending reports whether the library still awaits an admin decision.
func (l *Library) Pending() bool {
	return !l.IsApproved && !l.Rejection.Valid
}

// Bookable reports whether new bookings may be taken.
func (l *Library) Bookable() bool {
	return l.IsApproved && l.IsActive
}

// OwnedBy reports whether userID manages the library
func (l *Library) OwnedBy(userID uuid.UUID) bool {
	return l.LibrarianID == userID
}

// TimeSlot is a recurring daily window with its own price
type TimeSlot struct {
	ID          uuid.UUID     `db:"id"`
	LibraryID   uuid.UUID     `db:"library_id"`
	Name        string        `db:"name"`
	StartTime   string        `db:"start_time"`
	EndTime     string        `db:"end_time"`
	Price       pricing.Money `db:"price"`
	MaxCapacity int           `db:"max_capacity"`
	IsActive    bool          `db:"is_active"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// Window returns the slot as minutes since midnight, [start, end).
func (s *TimeSlot) Window() (start, end int, err error) {
	if start, err = ParseClock(s.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = ParseClock(s.EndTime); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// DurationHours is the slot length in hours
func (s *TimeSlot) DurationHours() float64 {
	start, end, err := s.Window()
	if err != nil {
		return 0
	}
	return float64(end-start) / 60
}

// Overlaps reports whether two slots share any minute.
func (s *TimeSlot) Overlaps(other *TimeSlot) bool {
	aStart, aEnd, err := s.Window()
	if err != nil {
		return false
	}
	bStart, bEnd, err := other.Window()
	if err != nil {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// ParseClock converts HH:MM to minutes since midnight.
func ParseClock(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return h*60 + m, nil
}
