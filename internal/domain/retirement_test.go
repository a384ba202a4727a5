package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetirementBenefits_CommutedPension(t *testing.T) {
	l := limits2024()
	testCases := []struct {
		desc     string
		govt     bool
		received int64
		percent  int64
		expected string
	}{
		// full value 300000 / 40% = 750000, a third of which is 250000
		{"partial commutation", false, 300000, 40, "250000.00"},
		{"no percentage treats receipt as full value", false, 300000, 0, "100000.00"},
		{"government pensioner fully exempt", true, 300000, 40, "300000.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			r, err := NewRetirementBenefits(RetirementDetails{
				GovernmentEmployee:    tc.govt,
				PensionCommuted:       true,
				CommutedPensionAmount: rupees(tc.received),
				CommutationPercentage: decimal.NewFromInt(tc.percent),
			})
			require.NoError(t, err)
			got, err := r.CommutedPensionExemption(l)
			require.NoError(t, err)
			assertMoney(t, tc.expected, got)
		})
	}
}

func TestRetirementBenefits_TaxableIncome(t *testing.T) {
	r, err := NewRetirementBenefits(RetirementDetails{
		GratuityAmount:        rupees(1500000),
		YearsOfService:        26,
		LastDrawnSalary:       rupees(100000),
		LeaveEncashmentAmount: rupees(600000),
		LeaveBalanceDays:      240,
		PensionAmount:         rupees(360000),
		VRSCompensation:       rupees(800000),
		OtherBenefits:         rupees(40000),
	})
	require.NoError(t, err)
	l := limits2024()

	ex, err := r.Exemptions(l)
	require.NoError(t, err)
	// 100000 * 26 * 15 / 26 = 1500000
	assertMoney(t, "1500000.00", ex.Gratuity)
	// 100000 * 240 / 30 = 800000, above the 600000 received
	assertMoney(t, "600000.00", ex.LeaveEncashment)
	assertMoney(t, "500000.00", ex.VRS)
	assertMoney(t, "0.00", ex.CommutedPension)

	total, err := r.TotalBenefits()
	require.NoError(t, err)
	assertMoney(t, "3300000.00", total)

	taxable, err := r.TaxableIncome(l)
	require.NoError(t, err)
	assertMoney(t, "700000.00", taxable)
}

func TestRetirementBenefits_OtherBenefitsFullyTaxable(t *testing.T) {
	l := limits2024()
	base := RetirementDetails{
		GratuityAmount:  rupees(200000),
		YearsOfService:  10,
		LastDrawnSalary: rupees(52000),
	}
	without, err := NewRetirementBenefits(base)
	require.NoError(t, err)
	base.OtherBenefits = rupees(40000)
	with, err := NewRetirementBenefits(base)
	require.NoError(t, err)

	before, err := without.TaxableIncome(l)
	require.NoError(t, err)
	after, err := with.TaxableIncome(l)
	require.NoError(t, err)
	diff, err := after.Sub(before)
	require.NoError(t, err)
	assertMoney(t, "40000.00", diff)

	ex, err := with.Exemptions(l)
	require.NoError(t, err)
	exempt, err := ex.Total(with.Currency())
	require.NoError(t, err)
	assertMoney(t, "200000.00", exempt, "other benefits earn no exemption")
}

func TestNewRetirementBenefits_Validation(t *testing.T) {
	_, err := NewRetirementBenefits(RetirementDetails{CommutedPensionAmount: rupees(1000)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewRetirementBenefits(RetirementDetails{CommutationPercentage: decimal.NewFromInt(120)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewRetirementBenefits(RetirementDetails{YearsOfService: -2})
	assert.ErrorIs(t, err, ErrValidation)
}
