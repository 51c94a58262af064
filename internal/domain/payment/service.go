package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seatbook/seatbook-api/internal/domain/booking"
	"github.com/seatbook/seatbook-api/internal/pkg/errorhandler"
	"github.com/seatbook/seatbook-api/internal/pkg/events"
	"github.com/seatbook/seatbook-api/internal/pkg/logger"
	"github.com/seatbook/seatbook-api/internal/pkg/razorpay"
)

// Bookings is the part of the booking store payments need
type Bookings interface {
	GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	SetOrderID(ctx context.Context, id uuid.UUID, orderID string) error
}

// Gateway creates checkout orders
type Gateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	KeyID() string
}

// SignatureVerifier checks checkout callback signatures
type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

// Service handles payment business logic
type Service struct {
	bookings  Bookings
	confirmer Confirmer
	gateway   Gateway
	verifier  SignatureVerifier
	settings  booking.SettingsProvider
	events    events.Publisher
	now       func() time.Time
}

// NewService creates payment service
func NewService(bookings Bookings, confirmer Confirmer, gateway Gateway, verifier SignatureVerifier, settingsProvider booking.SettingsProvider, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		bookings:  bookings,
		confirmer: confirmer,
		gateway:   gateway,
		verifier:  verifier,
		settings:  settingsProvider,
		events:    publisher,
		now:       time.Now,
	}
}

// CreateOrder opens a gateway order for the caller's pending booking and
// binds its id to the booking.
func (s *Service) CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*OrderResponse, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, booking.ErrForbidden
	}
	if b.IsPaid() {
		return nil, ErrAlreadyPaid
	}
	if b.Status != booking.StatusPending {
		return nil, ErrNotPending
	}
	if req.Amount != b.TotalAmount {
		return nil, fmt.Errorf("%w: expected %s", ErrAmountMismatch, b.TotalAmount)
	}

	if b.OrderID.Valid {
		return s.existingOrder(ctx, b), nil
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   b.TotalAmount.Minor(),
		Currency: Currency,
		Receipt:  b.ID.String(),
		Notes: map[string]string{
			"booking_id":   b.ID.String(),
			"booking_code": b.BookingCode,
			"user_id":      userID.String(),
		},
	})
	if err != nil {
		errorhandler.LogExternalServiceError(ctx, "razorpay", "/v1/orders", 0, err)
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	if err := s.bookings.SetOrderID(ctx, b.ID, order.ID); err != nil {
		if !errors.Is(err, booking.ErrStateChanged) {
			return nil, err
		}
		// a concurrent checkout bound its order first
		current, getErr := s.bookings.GetByID(ctx, b.ID)
		if getErr != nil {
			return nil, getErr
		}
		if current.IsPaid() {
			return nil, ErrAlreadyPaid
		}
		if current.Status != booking.StatusPending || !current.OrderID.Valid {
			return nil, ErrNotPending
		}
		logger.LogInfo(ctx, "Payment order discarded, booking already bound",
			"booking_id", b.ID.String(),
			"order_id", order.ID,
			"stored_order_id", current.OrderID.String,
		)
		return s.existingOrder(ctx, current), nil
	}

	logger.LogInfo(ctx, "Payment order created",
		"booking_id", b.ID.String(),
		"order_id", order.ID,
		"amount", order.Amount,
	)

	return &OrderResponse{
		OrderID:   order.ID,
		BookingID: b.ID,
		Amount:    order.Amount,
		Total:     b.TotalAmount,
		Currency:  order.Currency,
		KeyID:     s.gateway.KeyID(),
	}, nil
}

// existingOrder reissues the checkout for the order already bound to b, so a
// repeated checkout pays the same order.
func (s *Service) existingOrder(ctx context.Context, b *booking.Booking) *OrderResponse {
	logger.LogInfo(ctx, "Payment order reused",
		"booking_id", b.ID.String(),
		"order_id", b.OrderID.String,
	)
	return &OrderResponse{
		OrderID:   b.OrderID.String,
		BookingID: b.ID,
		Amount:    b.TotalAmount.Minor(),
		Total:     b.TotalAmount,
		Currency:  Currency,
		KeyID:     s.gateway.KeyID(),
	}
}

// VerifyAndConfirm checks the checkout signature, then confirms the booking
// and writes its ledger entry in one transaction. Repeating a successful
// call with the same payment id returns the booking unchanged.
func (s *Service) VerifyAndConfirm(ctx context.Context, userID uuid.UUID, req *VerifyRequest) (*Confirmation, error) {
	if !s.verifier.Verify(req.OrderID, req.PaymentID, req.Signature) {
		logger.LogWarn(ctx, "Payment signature rejected",
			"booking_id", req.BookingID.String(),
			"order_id", req.OrderID,
			"payment_id", req.PaymentID,
		)
		return nil, ErrInvalidSignature
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, booking.ErrForbidden
	}
	if b.OrderID.Valid && b.OrderID.String != req.OrderID {
		logger.LogWarn(ctx, "Payment order mismatch",
			"booking_id", b.ID.String(),
			"order_id", req.OrderID,
			"stored_order_id", b.OrderID.String,
		)
		return nil, ErrOrderMismatch
	}
	replay, err := checkPayable(b, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if replay {
		return &Confirmation{Booking: b, Replay: true}, nil
	}

	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	paidAt := s.now()
	entry, err := s.confirmer.ConfirmWithLedger(ctx, b, req.PaymentID, paidAt, snapshot.CommissionPercent)
	if errors.Is(err, booking.ErrStateChanged) {
		// lost a race with another confirmation; decide from the winner's state
		current, getErr := s.bookings.GetByID(ctx, b.ID)
		if getErr != nil {
			return nil, getErr
		}
		replay, err := checkPayable(current, req.PaymentID)
		if replay {
			return &Confirmation{Booking: current, Replay: true}, nil
		}
		if err == nil {
			err = ErrNotPending
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	b.Status = booking.StatusConfirmed
	b.PaymentStatus = booking.PaymentPaid
	b.PaymentID.String, b.PaymentID.Valid = req.PaymentID, true
	b.PaymentMethod.String, b.PaymentMethod.Valid = Method, true
	b.PaidAt.Time, b.PaidAt.Valid = paidAt, true
	b.UpdatedAt = paidAt

	logger.LogInfo(ctx, "Payment confirmed",
		"booking_id", b.ID.String(),
		"payment_id", req.PaymentID,
		"commission", entry.PlatformCommission.String(),
		"payout", entry.LibrarianPayout.String(),
	)
	if err := s.events.Publish(ctx, events.BookingConfirmed, booking.NewEvent(b)); err != nil {
		logger.LogWarn(ctx, "Booking event publish failed", "event", events.BookingConfirmed, "booking_id", b.ID.String(), "error", err.Error())
	}

	return &Confirmation{Booking: b, Entry: entry}, nil
}

// checkPayable reports whether b can be confirmed with paymentID.
// replay is true when b is already paid by that same payment.
func checkPayable(b *booking.Booking, paymentID string) (replay bool, err error) {
	if b.IsPaid() {
		if b.PaymentID.Valid && b.PaymentID.String == paymentID {
			return true, nil
		}
		return false, ErrAlreadyPaid
	}
	if b.Status != booking.StatusPending {
		return false, ErrNotPending
	}
	return false, nil
}
