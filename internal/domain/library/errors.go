package library

import "errors"

var (
	ErrLibraryNotFound  = errors.New("library not found")
	ErrSlotNotFound     = errors.New("time slot not found")
	ErrNotOwner         = errors.New("not authorized to manage this library")
	ErrInvalidTimeRange = errors.New("start time must be before end time")
	ErrSlotOverlap      = errors.New("time slot overlaps with an existing slot")
	ErrInvalidPrice     = errors.New("price must be at least 1.00")
	ErrAlreadyApproved  = errors.New("library is already approved")
)
