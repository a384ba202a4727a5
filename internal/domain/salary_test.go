package domain

import (
	"testing"

	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSalaryIncome_HRAExemption(t *testing.T) {
	l := limits2024()
	testCases := []struct {
		desc     string
		basic    int64
		hra      int64
		rent     int64
		metro    bool
		expected string
	}{
		// rent-over-floor is the least of 25000, 22000-5000, 25000
		{"metro rent limited", 50000, 25000, 22000, true, "17000.00"},
		{"hra received limited", 50000, 10000, 30000, true, "10000.00"},
		{"non metro share limited", 50000, 30000, 40000, false, "20000.00"},
		{"rent below floor", 50000, 25000, 4000, true, "0.00"},
		{"no rent paid", 50000, 25000, 0, true, "0.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			s, err := NewSalaryIncome(
				SalaryComponents{Basic: rupees(tc.basic), HRA: rupees(tc.hra)},
				SalaryExemptionInputs{RentPaid: rupees(tc.rent), Metro: tc.metro},
			)
			require.NoError(t, err)

			exempt, err := s.HRAExemption(l)
			require.NoError(t, err)
			assertMoney(t, tc.expected, exempt)
		})
	}
}

func TestSalaryIncome_HRAExemptionNeverExceedsHRA(t *testing.T) {
	l := limits2024()
	rapid.Check(t, func(t *rapid.T) {
		basic := rapid.Int64Range(0, 5_000_000).Draw(t, "basic")
		hra := rapid.Int64Range(0, 3_000_000).Draw(t, "hra")
		rent := rapid.Int64Range(0, 5_000_000).Draw(t, "rent")
		metro := rapid.Bool().Draw(t, "metro")

		s, err := NewSalaryIncome(
			SalaryComponents{Basic: rupees(basic), HRA: rupees(hra)},
			SalaryExemptionInputs{RentPaid: rupees(rent), Metro: metro},
		)
		require.NoError(t, err)
		exempt, err := s.HRAExemption(l)
		require.NoError(t, err)
		assert.True(t, exempt.Amount().LessThanOrEqual(s.Components().HRA.Amount()),
			"exemption %s exceeds hra %s", exempt, s.Components().HRA)
	})
}

func TestSalaryIncome_GovernmentRetirementFullyExempt(t *testing.T) {
	l := limits2024()
	rapid.Check(t, func(t *rapid.T) {
		gratuity := rapid.Int64Range(0, 10_000_000).Draw(t, "gratuity")
		leave := rapid.Int64Range(0, 10_000_000).Draw(t, "leave")
		years := rapid.IntRange(0, 45).Draw(t, "years")

		s, err := NewSalaryIncome(
			SalaryComponents{Gratuity: rupees(gratuity), LeaveEncashment: rupees(leave)},
			SalaryExemptionInputs{
				YearsOfService:     years,
				GovernmentEmployee: true,
				LastDrawnSalary:    rupees(rapid.Int64Range(0, 500_000).Draw(t, "lastDrawn")),
				LeaveBalanceDays:   rapid.IntRange(0, 300).Draw(t, "leaveDays"),
			},
		)
		require.NoError(t, err)

		g, err := s.GratuityExemption(l)
		require.NoError(t, err)
		assert.Equal(t, s.Components().Gratuity.String(), g.String())

		le, err := s.LeaveEncashmentExemption(l)
		require.NoError(t, err)
		assert.Equal(t, s.Components().LeaveEncashment.String(), le.String())
	})
}

func TestSalaryIncome_AllowanceCaps(t *testing.T) {
	l := limits2024()
	s, err := NewSalaryIncome(SalaryComponents{
		Basic:            rupees(600000),
		Conveyance:       rupees(24000),
		MedicalAllowance: rupees(12000),
	}, SalaryExemptionInputs{})
	require.NoError(t, err)

	conv, err := s.ConveyanceExemption(l)
	require.NoError(t, err)
	assertMoney(t, "19200.00", conv)

	med, err := s.MedicalExemption(l)
	require.NoError(t, err)
	assertMoney(t, "12000.00", med)
}

func TestSalaryIncome_GratuityExemption(t *testing.T) {
	l := limits2024()
	testCases := []struct {
		desc      string
		years     int
		govt      bool
		lastDrawn int64
		actual    int64
		expected  string
	}{
		{"government employee with no service", 0, true, 52000, 500000, "500000.00"},
		{"below minimum service", 4, false, 52000, 500000, "0.00"},
		// 52000 * 10 * 15 / 26 = 300000
		{"formula limited", 10, false, 52000, 500000, "300000.00"},
		{"actual limited", 10, false, 52000, 100000, "100000.00"},
		{"statutory cap", 40, false, 104000, 5000000, "2000000.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			s, err := NewSalaryIncome(
				SalaryComponents{Basic: rupees(624000), Gratuity: rupees(tc.actual)},
				SalaryExemptionInputs{
					YearsOfService:     tc.years,
					GovernmentEmployee: tc.govt,
					LastDrawnSalary:    rupees(tc.lastDrawn),
				},
			)
			require.NoError(t, err)

			exempt, err := s.GratuityExemption(l)
			require.NoError(t, err)
			assertMoney(t, tc.expected, exempt)
		})
	}
}

func TestSalaryIncome_LeaveEncashmentExemption(t *testing.T) {
	s, err := NewSalaryIncome(
		SalaryComponents{Basic: rupees(600000), LeaveEncashment: rupees(400000)},
		SalaryExemptionInputs{YearsOfService: 12, LastDrawnSalary: rupees(60000), LeaveBalanceDays: 150},
	)
	require.NoError(t, err)

	// 60000 * 150 / 30 = 300000
	exempt, err := s.LeaveEncashmentExemption(limits2024())
	require.NoError(t, err)
	assertMoney(t, "300000.00", exempt)

	// pre-2023 cap of 3 lakh still binds at the same figure
	exempt, err = s.LeaveEncashmentExemption(DefaultLimits(MustTaxYear(2022)))
	require.NoError(t, err)
	assertMoney(t, "300000.00", exempt)
}

func TestSalaryIncome_TaxableSalary(t *testing.T) {
	s, err := NewSalaryIncome(SalaryComponents{
		Basic:            rupees(600000),
		HRA:              rupees(300000),
		SpecialAllowance: rupees(200000),
		Conveyance:       rupees(19200),
		Bonus:            rupees(50000),
	}, SalaryExemptionInputs{RentPaid: rupees(240000), Metro: true})
	require.NoError(t, err)
	assert.False(t, s.ExemptionsComputed())

	gross, err := s.GrossSalary()
	require.NoError(t, err)
	assertMoney(t, "1169200.00", gross)

	computed, err := s.WithExemptions(limits2024())
	require.NoError(t, err)
	assert.True(t, computed.ExemptionsComputed())
	assert.False(t, s.ExemptionsComputed(), "original is unchanged")

	// HRA: min(300000, 240000-60000, 300000) = 180000; conveyance 19200
	total, err := computed.TotalExemptions()
	require.NoError(t, err)
	assertMoney(t, "199200.00", total)

	taxable, err := computed.TaxableSalary()
	require.NoError(t, err)
	assertMoney(t, "970000.00", taxable)
}

func TestSalaryIncome_Prorate(t *testing.T) {
	s, err := NewSalaryIncome(SalaryComponents{
		Basic: rupees(30000),
		Bonus: rupees(6000),
	}, SalaryExemptionInputs{})
	require.NoError(t, err)

	factor := decimal.NewFromInt(25).Div(decimal.NewFromInt(30))
	p, err := s.Prorate(factor)
	require.NoError(t, err)
	assertMoney(t, "25000.00", p.Components().Basic)
	assertMoney(t, "6000.00", p.Components().Bonus, "variable pay is not prorated")

	_, err = s.Prorate(decimal.NewFromFloat(1.5))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSalaryIncome_Annualize(t *testing.T) {
	s, err := NewSalaryIncome(
		SalaryComponents{Basic: rupees(50000), HRA: rupees(20000), Bonus: rupees(100000)},
		SalaryExemptionInputs{RentPaid: rupees(18000)},
	)
	require.NoError(t, err)

	a, err := s.Annualize(12)
	require.NoError(t, err)
	assertMoney(t, "600000.00", a.Components().Basic)
	assertMoney(t, "100000.00", a.Components().Bonus, "one-off heads are not multiplied")
	gross, err := a.GrossSalary()
	require.NoError(t, err)
	assertMoney(t, "940000.00", gross)
	assertMoney(t, "240000.00", a.Components().HRA)
	assertMoney(t, "216000.00", a.ExemptionInputs().RentPaid)
}

func TestNewSalaryIncome_RejectsMixedCurrency(t *testing.T) {
	usd, err := money.NewFromString("1000", "USD")
	require.NoError(t, err)

	_, err = NewSalaryIncome(SalaryComponents{Basic: rupees(1000), Bonus: usd}, SalaryExemptionInputs{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSalaryIncome(SalaryComponents{Basic: rupees(1000)}, SalaryExemptionInputs{YearsOfService: -1})
	assert.ErrorIs(t, err, ErrValidation)
}
