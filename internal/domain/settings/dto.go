package settings

import (
	"strconv"

	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

// UpdateRequest is a partial update; nil fields keep their current value.
type UpdateRequest struct {
	TaxPercent              *float64       `json:"tax_percentage" validate:"omitempty,gte=0,lte=100"`
	PlatformFee             *pricing.Money `json:"platform_fee" validate:"omitempty,gte=0"`
	CommissionPercent       *float64       `json:"commission_percentage" validate:"omitempty,gte=0,lte=100"`
	CancellationWindowHours *int           `json:"cancellation_window_hours" validate:"omitempty,gte=0,lte=720"`
	MaxAdvanceBookingDays   *int           `json:"max_advance_booking_days" validate:"omitempty,gte=0,lte=365"`
}

// Apply merges the request into s.
func (r UpdateRequest) Apply(s Snapshot) Snapshot {
	if r.TaxPercent != nil {
		s.TaxPercent = *r.TaxPercent
	}
	if r.PlatformFee != nil {
		s.PlatformFee = *r.PlatformFee
	}
	if r.CommissionPercent != nil {
		s.CommissionPercent = *r.CommissionPercent
	}
	if r.CancellationWindowHours != nil {
		s.CancellationWindowHours = *r.CancellationWindowHours
	}
	if r.MaxAdvanceBookingDays != nil {
		s.MaxAdvanceBookingDays = *r.MaxAdvanceBookingDays
	}
	return s
}

// Values returns only the keys the request sets, formatted for storage.
func (r UpdateRequest) Values() map[string]string {
	values := map[string]string{}
	if r.TaxPercent != nil {
		values[KeyTaxPercentage] = strconv.FormatFloat(*r.TaxPercent, 'f', -1, 64)
	}
	if r.PlatformFee != nil {
		values[KeyPlatformFee] = r.PlatformFee.String()
	}
	if r.CommissionPercent != nil {
		values[KeyCommissionPercentage] = strconv.FormatFloat(*r.CommissionPercent, 'f', -1, 64)
	}
	if r.CancellationWindowHours != nil {
		values[KeyCancellationWindowHours] = strconv.Itoa(*r.CancellationWindowHours)
	}
	if r.MaxAdvanceBookingDays != nil {
		values[KeyMaxAdvanceBookingDays] = strconv.Itoa(*r.MaxAdvanceBookingDays)
	}
	return values
}
