// Package pricing computes booking price breakdowns and commission splits.
// All functions are pure: identical inputs always give identical outputs.
package pricing

import "math/big"

const (
	DefaultTaxPercent        = 18.0
	DefaultPlatformFee       = Money(500)
	DefaultCommissionPercent = 10.0
)

// Rates holds the tunable inputs of a price breakdown.
type Rates struct {
	TaxPercent  float64
	PlatformFee Money
}

// DefaultRates returns the platform defaults (18% tax, 5.00 fee).
func DefaultRates() Rates {
	return Rates{TaxPercent: DefaultTaxPercent, PlatformFee: DefaultPlatformFee}
}

// Breakdown is the immutable price of a booking.
type Breakdown struct {
	BasePrice   Money `json:"base_price"`
	TaxAmount   Money `json:"tax_amount"`
	PlatformFee Money `json:"platform_fee"`
	TotalAmount Money `json:"total_amount"`
}

// Split is the commission/payout division of a booking amount.
type Split struct {
	BookingAmount      Money   `json:"booking_amount"`
	PlatformCommission Money   `json:"platform_commission"`
	LibrarianPayout    Money   `json:"librarian_payout"`
	CommissionPercent  float64 `json:"commission_percentage"`
}

// PriceBreakdown computes tax and total for a base price. Tax and total are
// rounded independently from the unrounded tax.
func PriceBreakdown(base Money, rates Rates) Breakdown {
	baseR := new(big.Rat).SetInt64(base.Minor())
	tax := new(big.Rat).Mul(baseR, percentRat(rates.TaxPercent))

	total := new(big.Rat).Add(baseR, tax)
	total.Add(total, new(big.Rat).SetInt64(rates.PlatformFee.Minor()))

	return Breakdown{
		BasePrice:   base,
		TaxAmount:   Money(roundHalfAway(tax)),
		PlatformFee: rates.PlatformFee,
		TotalAmount: Money(roundHalfAway(total)),
	}
}

// CommissionSplit divides amount between platform and librarian. The payout
// is derived from the unrounded commission, so the two parts may differ from
// amount by at most one minor unit.
func CommissionSplit(amount Money, commissionPercent float64) Split {
	amountR := new(big.Rat).SetInt64(amount.Minor())
	commission := new(big.Rat).Mul(amountR, percentRat(commissionPercent))
	payout := new(big.Rat).Sub(amountR, commission)

	return Split{
		BookingAmount:      amount,
		PlatformCommission: Money(roundHalfAway(commission)),
		LibrarianPayout:    Money(roundHalfAway(payout)),
		CommissionPercent:  commissionPercent,
	}
}
