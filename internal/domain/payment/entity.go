package payment

import (
	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/domain/booking"
	"github.com/seatbook/seatbook-api/internal/domain/settlement"
	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

const (
	// Currency of every gateway order
	Currency = "INR"
	// Method recorded on bookings paid through checkout
	Method = "Razorpay"
)

// CreateOrderRequest is the body of POST /payments/create-order.
// Amount must equal the booking total.
type CreateOrderRequest struct {
	BookingID uuid.UUID     `json:"booking_id" validate:"required"`
	Amount    pricing.Money `json:"amount"`
}

// OrderResponse carries what the checkout widget needs
type OrderResponse struct {
	OrderID   string        `json:"order_id"`
	BookingID uuid.UUID     `json:"booking_id"`
	Amount    int64         `json:"amount"`
	Total     pricing.Money `json:"total_amount"`
	Currency  string        `json:"currency"`
	KeyID     string        `json:"key"`
}

// VerifyRequest is the checkout callback forwarded by the client
type VerifyRequest struct {
	OrderID   string    `json:"razorpay_order_id" validate:"required"`
	PaymentID string    `json:"razorpay_payment_id" validate:"required"`
	Signature string    `json:"razorpay_signature" validate:"required"`
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
}

// Confirmation is the outcome of a verified payment. Entry is nil when the
// call repeated an earlier confirmation.
type Confirmation struct {
	Booking *booking.Booking
	Entry   *settlement.Transaction
	Replay  bool
}

// ConfirmationResponse is the API view of a Confirmation
type ConfirmationResponse struct {
	Message string                   `json:"message"`
	Booking *booking.BookingResponse `json:"booking"`
}
