package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/seatbook/seatbook-api/internal/pkg/jwt"
)

const defaultRejectionReason = "Does not meet platform requirements"

// Service manages libraries and their time slots
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates library service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListTimeSlots returns the active slots of a library ordered by start time
func (s *Service) ListTimeSlots(ctx context.Context, libraryID uuid.UUID) ([]*TimeSlot, error) {
	if _, err := s.repo.GetLibrary(ctx, libraryID); err != nil {
		return nil, err
	}
	return s.repo.ListActiveTimeSlots(ctx, libraryID)
}

// ListPendingLibraries returns libraries waiting for an admin decision
func (s *Service) ListPendingLibraries(ctx context.Context) ([]*Library, error) {
	return s.repo.ListPendingLibraries(ctx)
}

// ApproveLibrary makes a library bookable
func (s *Service) ApproveLibrary(ctx context.Context, adminID, libraryID uuid.UUID) (*Library, error) {
	lib, err := s.repo.ApproveLibrary(ctx, libraryID, adminID, s.now())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("library_id", lib.ID.String()).
		Str("admin_id", adminID.String()).
		Msg("library approved")
	return lib, nil
}

// RejectLibrary takes a library out of booking with a reason
func (s *Service) RejectLibrary(ctx context.Context, adminID, libraryID uuid.UUID, reason string) (*Library, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultRejectionReason
	}

	lib, err := s.repo.RejectLibrary(ctx, libraryID, reason, s.now())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("library_id", lib.ID.String()).
		Str("admin_id", adminID.String()).
		Str("reason", reason).
		Msg("library rejected")
	return lib, nil
}

// CreateTimeSlot adds a slot to a library the caller manages
func (s *Service) CreateTimeSlot(ctx context.Context, userID uuid.UUID, role string, req *CreateTimeSlotRequest) (*TimeSlot, error) {
	lib, err := s.repo.GetLibrary(ctx, req.LibraryID)
	if err != nil {
		return nil, err
	}
	if !canManage(lib, userID, role) {
		return nil, ErrNotOwner
	}
	if req.Price < 100 {
		return nil, ErrInvalidPrice
	}

	now := s.now()
	slot := &TimeSlot{
		ID:          uuid.New(),
		LibraryID:   lib.ID,
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Price:       req.Price,
		MaxCapacity: req.MaxCapacity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateWindow(slot); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTimeSlot(ctx, slot, noOverlap(slot)); err != nil {
		return nil, err
	}

	log.Info().
		Str("library_id", lib.ID.String()).
		Str("slot_id", slot.ID.String()).
		Str("window", slot.StartTime+"-"+slot.EndTime).
		Msg("time slot created")
	return slot, nil
}

// UpdateTimeSlot applies a partial update, re-validating the window
func (s *Service) UpdateTimeSlot(ctx context.Context, userID uuid.UUID, role string, slotID uuid.UUID, req *UpdateTimeSlotRequest) (*TimeSlot, error) {
	slot, err := s.repo.GetTimeSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	lib, err := s.repo.GetLibrary(ctx, slot.LibraryID)
	if err != nil {
		return nil, err
	}
	if !canManage(lib, userID, role) {
		return nil, ErrNotOwner
	}

	if req.Name != nil {
		slot.Name = *req.Name
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.Price != nil {
		if *req.Price < 100 {
			return nil, ErrInvalidPrice
		}
		slot.Price = *req.Price
	}
	if req.MaxCapacity != nil {
		slot.MaxCapacity = *req.MaxCapacity
	}
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}
	slot.UpdatedAt = s.now()

	if err := validateWindow(slot); err != nil {
		return nil, err
	}

	var guard SlotGuard
	if slot.IsActive {
		guard = noOverlap(slot)
	}
	if err := s.repo.UpdateTimeSlot(ctx, slot, guard); err != nil {
		return nil, err
	}
	return slot, nil
}

// DeleteTimeSlot removes a slot the caller manages
func (s *Service) DeleteTimeSlot(ctx context.Context, userID uuid.UUID, role string, slotID uuid.UUID) error {
	slot, err := s.repo.GetTimeSlot(ctx, slotID)
	if err != nil {
		return err
	}
	lib, err := s.repo.GetLibrary(ctx, slot.LibraryID)
	if err != nil {
		return err
	}
	if !canManage(lib, userID, role) {
		return ErrNotOwner
	}
	return s.repo.DeleteTimeSlot(ctx, slotID)
}

func canManage(lib *Library, userID uuid.UUID, role string) bool {
	return role == jwt.RoleAdmin || lib.OwnedBy(userID)
}

func validateWindow(slot *TimeSlot) error {
	start, end, err := slot.Window()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if start >= end {
		return ErrInvalidTimeRange
	}
	return nil
}

func noOverlap(slot *TimeSlot) SlotGuard {
	return func(siblings []*TimeSlot) error {
		for _, other := range siblings {
			if other.ID != slot.ID && slot.Overlaps(other) {
				return fmt.Errorf("%w: %s (%s-%s)", ErrSlotOverlap, other.Name, other.StartTime, other.EndTime)
			}
		}
		return nil
	}
}
