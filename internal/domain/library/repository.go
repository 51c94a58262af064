package library

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines library and time slot data access
type Repository interface {
	GetLibrary(ctx context.Context, id uuid.UUID) (*Library, error)
	ListLibraryIDsByOwner(ctx context.Context, librarianID uuid.UUID) ([]uuid.UUID, error)
	ListPendingLibraries(ctx context.Context) ([]*Library, error)
	ApproveLibrary(ctx context.Context, id, adminID uuid.UUID, at time.Time) (*Library, error)
	RejectLibrary(ctx context.Context, id uuid.UUID, reason string, at time.Time) (*Library, error)

	GetTimeSlot(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	ListActiveTimeSlots(ctx context.Context, libraryID uuid.UUID) ([]*TimeSlot, error)
	CreateTimeSlot(ctx context.Context, slot *TimeSlot, guard SlotGuard) error
	UpdateTimeSlot(ctx context.Context, slot *TimeSlot, guard SlotGuard) error
	DeleteTimeSlot(ctx context.Context, id uuid.UUID) error
}

// SlotGuard inspects the other active slots of the library before a write.
// Writes for one library are serialised, so the guard sees a stable set.
type SlotGuard func(siblings []*TimeSlot) error

type repository struct {
	db *sqlx.DB
}

const librarySelectColumns = `
	id, librarian_id, name, address, total_seats, price_per_hour,
	is_approved, is_active, approved_by, approved_at, rejection_reason, created_at, updated_at
`

const slotSelectColumns = `
	id, library_id, name, start_time, end_time, price, max_capacity,
	is_active, created_at, updated_at
`

// NewRepository creates library repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetLibrary(ctx context.Context, id uuid.UUID) (*Library, error) {
	var lib Library
	err := r.db.GetContext(ctx, &lib, `SELECT `+librarySelectColumns+` FROM libraries WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLibraryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lib, nil
}

func (r *repository) ListLibraryIDsByOwner(ctx context.Context, librarianID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM libraries WHERE librarian_id = $1 ORDER BY created_at`, librarianID)
	return ids, err
}

func (r *repository) ListPendingLibraries(ctx context.Context) ([]*Library, error) {
	libs := []*Library{}
	err := r.db.SelectContext(ctx, &libs, `
		SELECT `+librarySelectColumns+` FROM libraries
		WHERE is_approved = FALSE AND rejection_reason IS NULL
		ORDER BY created_at
	`)
	return libs, err
}

// ApproveLibrary opens a library for bookings. Only a library that is not
// already approved and active matches.
func (r *repository) ApproveLibrary(ctx context.Context, id, adminID uuid.UUID, at time.Time) (*Library, error) {
	var lib Library
	err := r.db.GetContext(ctx, &lib, `
		UPDATE libraries
		SET is_approved = TRUE, is_active = TRUE, approved_by = $2, approved_at = $3,
		    rejection_reason = NULL, updated_at = $3
		WHERE id = $1 AND NOT (is_approved AND is_active)
		RETURNING `+librarySelectColumns, id, adminID, at)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetLibrary(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyApproved
	}
	if err != nil {
		return nil, err
	}
	return &lib, nil
}

// RejectLibrary closes a library for bookings and records why.
func (r *repository) RejectLibrary(ctx context.Context, id uuid.UUID, reason string, at time.Time) (*Library, error) {
	var lib Library
	err := r.db.GetContext(ctx, &lib, `
		UPDATE libraries
		SET is_approved = FALSE, is_active = FALSE, approved_by = NULL, approved_at = NULL,
		    rejection_reason = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+librarySelectColumns, id, reason, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLibraryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lib, nil
}

func (r *repository) GetTimeSlot(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	var slot TimeSlot
	err := r.db.GetContext(ctx, &slot, `SELECT `+slotSelectColumns+` FROM time_slots WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *repository) ListActiveTimeSlots(ctx context.Context, libraryID uuid.UUID) ([]*TimeSlot, error) {
	slots := []*TimeSlot{}
	err := r.db.SelectContext(ctx, &slots, `
		SELECT `+slotSelectColumns+` FROM time_slots
		WHERE library_id = $1 AND is_active = TRUE
		ORDER BY start_time
	`, libraryID)
	return slots, err
}

func (r *repository) CreateTimeSlot(ctx context.Context, slot *TimeSlot, guard SlotGuard) error {
	return r.guardedWrite(ctx, slot, guard, `
		INSERT INTO time_slots (id, library_id, name, start_time, end_time, price, max_capacity, is_active, created_at, updated_at)
		VALUES (:id, :library_id, :name, :start_time, :end_time, :price, :max_capacity, :is_active, :created_at, :updated_at)
	`)
}

func (r *repository) UpdateTimeSlot(ctx context.Context, slot *TimeSlot, guard SlotGuard) error {
	return r.guardedWrite(ctx, slot, guard, `
		UPDATE time_slots
		SET name = :name, start_time = :start_time, end_time = :end_time, price = :price,
		    max_capacity = :max_capacity, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id
	`)
}

// guardedWrite locks the library row, runs guard against the other active
// slots and then executes query.
func (r *repository) guardedWrite(ctx context.Context, slot *TimeSlot, guard SlotGuard, query string) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locked uuid.UUID
	err = tx.GetContext(ctx, &locked, `SELECT id FROM libraries WHERE id = $1 FOR UPDATE`, slot.LibraryID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrLibraryNotFound
	}
	if err != nil {
		return err
	}

	siblings := []*TimeSlot{}
	if err := tx.SelectContext(ctx, &siblings, `
		SELECT `+slotSelectColumns+` FROM time_slots
		WHERE library_id = $1 AND is_active = TRUE AND id <> $2
	`, slot.LibraryID, slot.ID); err != nil {
		return err
	}

	if guard != nil {
		if err := guard(siblings); err != nil {
			return err
		}
	}

	result, err := tx.NamedExecContext(ctx, query, slot)
	if err != nil {
		return mapSlotDBError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSlotNotFound
	}
	return tx.Commit()
}

// DeleteTimeSlot removes a slot. Slots referenced by bookings are
// deactivated instead so booking history stays intact.
func (r *repository) DeleteTimeSlot(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			result, err = r.db.ExecContext(ctx, `UPDATE time_slots SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
		}
		if err != nil {
			return err
		}
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func mapSlotDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23514":
		return ErrInvalidTimeRange
	case "23503":
		return ErrLibraryNotFound
	default:
		return err
	}
}
