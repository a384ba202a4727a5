package output

import (
	"testing"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   money.Money
		want string
	}{
		{money.Rupees(0), "INR 0.00"},
		{money.Rupees(999), "INR 999.00"},
		{money.Rupees(1000), "INR 1,000.00"},
		{money.Rupees(125000), "INR 1,25,000.00"},
		{money.Rupees(12500000), "INR 1,25,00,000.00"},
		{money.MustNew(decimal.RequireFromString("1234567.891"), "INR"), "INR 12,34,567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in))
	}
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "12.35%", FormatPercentage(decimal.NewFromFloat(12.3456)))
}

func TestIntToString(t *testing.T) {
	assert.Equal(t, "42", intToString(42))
}

func TestBreakdownEndsWithTotal(t *testing.T) {
	lines := breakdown(domain.TaxComputation{TotalTax: money.Rupees(10)})
	last := lines[len(lines)-1]
	assert.Equal(t, "Total tax", last.Label)
	assert.True(t, last.Amount.Equal(money.Rupees(10)))
}
