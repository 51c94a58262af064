package pricing

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Money is an amount in minor currency units (paise).
type Money int64

// FromFloat converts a major-unit amount to Money, rounding half away from zero.
func FromFloat(f float64) Money {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'f', -1, 64))
	if !ok {
		return 0
	}
	return Money(roundHalfAway(r.Mul(r, big.NewRat(100, 1))))
}

// ParseMoney parses a decimal string such as "241.00" or "36.5".
func ParseMoney(raw string) (Money, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(raw))
	if !ok {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return Money(roundHalfAway(r.Mul(r, big.NewRat(100, 1)))), nil
}

// Minor returns the amount in minor units.
func (m Money) Minor() int64 {
	return int64(m)
}

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		*m = 0
		return nil
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan reads NUMERIC(12,2) columns.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case []byte:
		parsed, err := ParseMoney(string(v))
		if err != nil {
			return err
		}
		*m = parsed
	case string:
		parsed, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = parsed
	case float64:
		*m = FromFloat(v)
	case int64:
		*m = Money(v * 100)
	default:
		return fmt.Errorf("unsupported money type: %T", src)
	}
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// roundHalfAway rounds r to the nearest integer, ties away from zero.
func roundHalfAway(r *big.Rat) int64 {
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()

	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if new(big.Int).Mul(rem, big.NewInt(2)).Cmp(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	if r.Sign() < 0 {
		q.Neg(q)
	}
	return q.Int64()
}

func percentRat(p float64) *big.Rat {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(p, 'f', -1, 64))
	if !ok {
		return new(big.Rat)
	}
	return r.Quo(r, big.NewRat(100, 1))
}
