package payment

import "errors"

var (
	ErrAlreadyPaid        = errors.New("booking already paid")
	ErrNotPending         = errors.New("booking is not awaiting payment")
	ErrAmountMismatch     = errors.New("amount does not match booking total")
	ErrOrderMismatch      = errors.New("order does not belong to this booking")
	ErrInvalidSignature   = errors.New("invalid payment signature")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrLedgerWrite        = errors.New("settlement ledger write failed")
)
