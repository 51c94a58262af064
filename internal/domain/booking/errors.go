package booking

import "errors"

var (
	ErrInvalidDate          = errors.New("invalid booking date")
	ErrInvalidSeat          = errors.New("seat number must not be blank")
	ErrLibraryUnavailable   = errors.New("library not found or not available")
	ErrSlotUnavailable      = errors.New("time slot not found or not available")
	ErrSeatConflict         = errors.New("this seat is already booked for the selected date and time")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrForbidden            = errors.New("not authorized to access this booking")
	ErrNotConfirmed         = errors.New("only confirmed bookings can be cancelled")
	ErrCancellationClosed   = errors.New("cancellation window has closed")
	ErrDuplicateBookingCode = errors.New("duplicate booking code")
)
