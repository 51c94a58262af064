package payment

import (
	"net/http"

	"github.com/seatbook/seatbook-api/internal/domain/booking"
	"github.com/seatbook/seatbook-api/internal/middleware"
	"github.com/seatbook/seatbook-api/internal/pkg/errorhandler"
	"github.com/seatbook/seatbook-api/internal/pkg/response"
	"github.com/seatbook/seatbook-api/internal/pkg/validator"
)

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

var paymentErrorRules = []errorhandler.Rule{
	{Err: booking.ErrBookingNotFound, Status: http.StatusNotFound, Code: "NOT_FOUND"},
	{Err: booking.ErrForbidden, Status: http.StatusForbidden, Code: "FORBIDDEN", Message: "Not authorized to pay for this booking"},
	{Err: ErrInvalidSignature, Status: http.StatusBadRequest, Code: "INVALID_SIGNATURE"},
	{Err: ErrAlreadyPaid, Status: http.StatusBadRequest, Code: "ALREADY_PAID"},
	{Err: ErrNotPending, Status: http.StatusBadRequest, Code: "NOT_PENDING"},
	{Err: ErrAmountMismatch, Status: http.StatusBadRequest, Code: "AMOUNT_MISMATCH"},
	{Err: ErrOrderMismatch, Status: http.StatusBadRequest, Code: "ORDER_MISMATCH"},
	{Err: ErrGatewayUnavailable, Status: http.StatusBadGateway, Code: "PAYMENT_GATEWAY_ERROR"},
}

// CreateOrder handles POST /payments/create-order
// @Summary Create a checkout order for a pending booking
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Booking and amount"
// @Success 200 {object} response.Response{data=OrderResponse}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /payments/create-order [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if req.Amount <= 0 {
		response.ValidationError(w, map[string]string{"amount": "amount must be greater than 0"})
		return
	}

	ctx := r.Context()
	order, err := h.service.CreateOrder(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, paymentErrorRules...)
		return
	}
	response.OK(w, order)
}

// Verify handles POST /payments/verify
// @Summary Verify a checkout signature and confirm the booking
// @Tags Payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifyRequest true "Checkout callback"
// @Success 200 {object} response.Response{data=ConfirmationResponse}
// @Failure 400 {object} response.Response
// @Router /payments/verify [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	confirmation, err := h.service.VerifyAndConfirm(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		errorhandler.HandleDomainError(ctx, w, err, paymentErrorRules...)
		return
	}

	message := "Payment verified successfully"
	if confirmation.Replay {
		message = "Payment already verified"
	}
	response.OK(w, ConfirmationResponse{
		Message: message,
		Booking: booking.ResponseFromEntity(confirmation.Booking),
	})
}
