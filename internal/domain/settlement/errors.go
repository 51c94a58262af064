package settlement

import "errors"

var (
	ErrDuplicateEntry = errors.New("ledger entry already exists for booking")
	ErrInvalidRange   = errors.New("start_date must not be after end_date")
)
