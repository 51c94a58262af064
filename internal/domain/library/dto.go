package library

import (
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

// CreateTimeSlotRequest is the body of POST /time-slots
type CreateTimeSlotRequest struct {
	LibraryID   uuid.UUID     `json:"library_id" validate:"required"`
	Name        string        `json:"slot_name" validate:"required,max=100"`
	StartTime   string        `json:"start_time" validate:"required,hhmm"`
	EndTime     string        `json:"end_time" validate:"required,hhmm"`
	Price       pricing.Money `json:"price"`
	MaxCapacity int           `json:"max_capacity" validate:"gte=1"`
}

// UpdateTimeSlotRequest is a partial update of a slot
type UpdateTimeSlotRequest struct {
	Name        *string        `json:"slot_name" validate:"omitempty,min=1,max=100"`
	StartTime   *string        `json:"start_time" validate:"omitempty,hhmm"`
	EndTime     *string        `json:"end_time" validate:"omitempty,hhmm"`
	Price       *pricing.Money `json:"price"`
	MaxCapacity *int           `json:"max_capacity" validate:"omitempty,gte=1"`
	IsActive    *bool          `json:"is_active"`
}

// RejectLibraryRequest is the optional body of PUT /admin/libraries/{id}/reject
type RejectLibraryRequest struct {
	Reason string `json:"rejection_reason" validate:"max=500"`
}

// LibraryResponse is the admin view of a library
type LibraryResponse struct {
	ID              uuid.UUID     `json:"id"`
	LibrarianID     uuid.UUID     `json:"librarian_id"`
	Name            string        `json:"library_name"`
	Address         string        `json:"address"`
	TotalSeats      int           `json:"total_seats"`
	PricePerHour    pricing.Money `json:"price_per_hour"`
	IsApproved      bool          `json:"is_approved"`
	IsActive        bool          `json:"is_active"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
}

// LibraryResponseFromEntity converts a library for the API
func LibraryResponseFromEntity(l *Library) *LibraryResponse {
	resp := &LibraryResponse{
		ID:           l.ID,
		LibrarianID:  l.LibrarianID,
		Name:         l.Name,
		Address:      l.Address,
		TotalSeats:   l.TotalSeats,
		PricePerHour: l.PricePerHour,
		IsApproved:   l.IsApproved,
		IsActive:     l.IsActive,
	}
	if l.ApprovedAt.Valid {
		resp.ApprovedAt = &l.ApprovedAt.Time
	}
	if l.Rejection.Valid {
		resp.RejectionReason = &l.Rejection.String
	}
	return resp
}

// TimeSlotResponse is the API view of a slot
type TimeSlotResponse struct {
	ID            uuid.UUID     `json:"id"`
	LibraryID     uuid.UUID     `json:"library_id"`
	Name          string        `json:"slot_name"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	DurationHours float64       `json:"duration_hours"`
	Price         pricing.Money `json:"price"`
	MaxCapacity   int           `json:"max_capacity"`
	IsActive      bool          `json:"is_active"`
}

// TimeSlotResponseFromEntity converts a slot for the API
func TimeSlotResponseFromEntity(s *TimeSlot) *TimeSlotResponse {
	return &TimeSlotResponse{
		ID:            s.ID,
		LibraryID:     s.LibraryID,
		Name:          s.Name,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		DurationHours: s.DurationHours(),
		Price:         s.Price,
		MaxCapacity:   s.MaxCapacity,
		IsActive:      s.IsActive,
	}
}
