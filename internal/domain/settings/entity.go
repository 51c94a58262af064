package settings

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/seatbook/seatbook-api/internal/pkg/pricing"
)

// Setting keys as stored in platform_settings
const (
	KeyTaxPercentage           = "tax_percentage"
	KeyPlatformFee             = "platform_fee"
	KeyCommissionPercentage    = "commission_percentage"
	KeyCancellationWindowHours = "cancellation_window_hours"
	KeyMaxAdvanceBookingDays   = "max_advance_booking_days"
)

const (
	DefaultCancellationWindowHours = 24
	DefaultMaxAdvanceBookingDays   = 30
)

// Snapshot is the typed view of platform settings used by one operation.
type Snapshot struct {
	TaxPercent              float64       `json:"tax_percentage"`
	PlatformFee             pricing.Money `json:"platform_fee"`
	CommissionPercent       float64       `json:"commission_percentage"`
	CancellationWindowHours int           `json:"cancellation_window_hours"`
	MaxAdvanceBookingDays   int           `json:"max_advance_booking_days"`
}

// Defaults returns the platform defaults used when a key is unset.
func Defaults() Snapshot {
	return Snapshot{
		TaxPercent:              pricing.DefaultTaxPercent,
		PlatformFee:             pricing.DefaultPlatformFee,
		CommissionPercent:       pricing.DefaultCommissionPercent,
		CancellationWindowHours: DefaultCancellationWindowHours,
		MaxAdvanceBookingDays:   DefaultMaxAdvanceBookingDays,
	}
}

// Rates returns the pricing inputs of the snapshot.
func (s Snapshot) Rates() pricing.Rates {
	return pricing.Rates{TaxPercent: s.TaxPercent, PlatformFee: s.PlatformFee}
}

// Validate checks ranges.
func (s Snapshot) Validate() error {
	switch {
	case s.TaxPercent < 0 || s.TaxPercent > 100:
		return fmt.Errorf("%w: tax_percentage must be within 0..100", ErrInvalidSetting)
	case s.PlatformFee < 0:
		return fmt.Errorf("%w: platform_fee must not be negative", ErrInvalidSetting)
	case s.CommissionPercent < 0 || s.CommissionPercent > 100:
		return fmt.Errorf("%w: commission_percentage must be within 0..100", ErrInvalidSetting)
	case s.CancellationWindowHours < 0:
		return fmt.Errorf("%w: cancellation_window_hours must not be negative", ErrInvalidSetting)
	case s.MaxAdvanceBookingDays < 0:
		return fmt.Errorf("%w: max_advance_booking_days must not be negative", ErrInvalidSetting)
	}
	return nil
}

// FromValues builds a snapshot from stored key/value rows. Missing or
// unparsable values keep their defaults.
func FromValues(values map[string]string) Snapshot {
	s := Defaults()

	if v, ok := values[KeyTaxPercentage]; ok {
		s.TaxPercent = parseFloat(KeyTaxPercentage, v, s.TaxPercent)
	}
	if v, ok := values[KeyPlatformFee]; ok {
		if fee, err := pricing.ParseMoney(v); err == nil {
			s.PlatformFee = fee
		} else {
			logIgnored(KeyPlatformFee, v)
		}
	}
	if v, ok := values[KeyCommissionPercentage]; ok {
		s.CommissionPercent = parseFloat(KeyCommissionPercentage, v, s.CommissionPercent)
	}
	if v, ok := values[KeyCancellationWindowHours]; ok {
		s.CancellationWindowHours = parseInt(KeyCancellationWindowHours, v, s.CancellationWindowHours)
	}
	if v, ok := values[KeyMaxAdvanceBookingDays]; ok {
		s.MaxAdvanceBookingDays = parseInt(KeyMaxAdvanceBookingDays, v, s.MaxAdvanceBookingDays)
	}

	return s
}

func parseFloat(key, raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logIgnored(key, raw)
		return fallback
	}
	return v
}

func parseInt(key, raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		logIgnored(key, raw)
		return fallback
	}
	return v
}

func logIgnored(key, raw string) {
	log.Warn().Str("key", key).Str("value", raw).Msg("Ignoring unparsable platform setting")
}
