package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceBreakdown(t *testing.T) {
	tests := []struct {
		name  string
		base  Money
		rates Rates
		tax   Money
		total Money
	}{
		{name: "default rates", base: 20000, rates: DefaultRates(), tax: 3600, total: 24100},
		{name: "zero base", base: 0, rates: DefaultRates(), tax: 0, total: 500},
		{name: "half paisa rounds away from zero", base: 1025, rates: Rates{TaxPercent: 10, PlatformFee: 0}, tax: 103, total: 1128},
		{name: "fractional percent", base: 9999, rates: Rates{TaxPercent: 12.5, PlatformFee: 250}, tax: 1250, total: 11499},
		{name: "no tax", base: 15000, rates: Rates{TaxPercent: 0, PlatformFee: 500}, tax: 0, total: 15500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceBreakdown(tt.base, tt.rates)
			assert.Equal(t, tt.base, got.BasePrice)
			assert.Equal(t, tt.tax, got.TaxAmount)
			assert.Equal(t, tt.rates.PlatformFee, got.PlatformFee)
			assert.Equal(t, tt.total, got.TotalAmount)
		})
	}
}

func TestPriceBreakdownDeterministic(t *testing.T) {
	first := PriceBreakdown(12345, DefaultRates())
	for i := 0; i < 100; i++ {
		require.Equal(t, first, PriceBreakdown(12345, DefaultRates()))
	}
}

func TestCommissionSplit(t *testing.T) {
	split := CommissionSplit(24100, DefaultCommissionPercent)

	assert.Equal(t, Money(2410), split.PlatformCommission)
	assert.Equal(t, Money(21690), split.LibrarianPayout)
	assert.Equal(t, Money(24100), split.PlatformCommission+split.LibrarianPayout)
}

func TestCommissionSplitWithinOneMinorUnit(t *testing.T) {
	percents := []float64{0, 2.5, 7.5, 10, 12.34, 15, 33.33, 50, 100}
	for amount := Money(0); amount < 5000; amount += 7 {
		for _, pct := range percents {
			split := CommissionSplit(amount, pct)
			diff := int64(split.PlatformCommission + split.LibrarianPayout - amount)
			if diff < -1 || diff > 1 {
				t.Fatalf("amount=%s pct=%v: commission %s + payout %s off by %d",
					amount, pct, split.PlatformCommission, split.LibrarianPayout, diff)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "241.00", Money(24100).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-1.50", Money(-150).String())
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw     string
		want    Money
		wantErr bool
	}{
		{raw: "241.00", want: 24100},
		{raw: "36.5", want: 3650},
		{raw: "0.005", want: 1},
		{raw: " 10 ", want: 1000},
		{raw: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestMoneyJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: 24100})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":241.00}`, string(payload))

	var decoded struct {
		Amount Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":241}`), &decoded))
	assert.Equal(t, Money(24100), decoded.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"36.00"}`), &decoded))
	assert.Equal(t, Money(3600), decoded.Amount)
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan([]byte("216.90")))
	assert.Equal(t, Money(21690), m)

	require.NoError(t, m.Scan(nil))
	assert.Equal(t, Money(0), m)

	assert.Error(t, m.Scan(true))
}

func TestFromFloat(t *testing.T) {
	assert.Equal(t, Money(24100), FromFloat(241))
	assert.Equal(t, Money(10), FromFloat(0.1))
	assert.Equal(t, Money(-3), FromFloat(-0.025))
}
