package calculation

import (
	"testing"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleBookSlabs_TaxOnSlabIncome(t *testing.T) {
	slabs := NewRuleBookSlabs(domain.DefaultRuleBook())
	fy24 := domain.MustTaxYear(2024)
	fy25 := domain.MustTaxYear(2025)

	testCases := []struct {
		desc     string
		income   int64
		regime   domain.Regime
		year     domain.TaxYear
		expected string
	}{
		{"old regime below exemption", 250000, domain.RegimeOld, fy24, "0.00"},
		{"old regime second slab", 500000, domain.RegimeOld, fy24, "12500.00"},
		{"old regime top slab", 1200000, domain.RegimeOld, fy24, "172500.00"},
		{"new regime 2024-25", 1200000, domain.RegimeNew, fy24, "80000.00"},
		{"new regime 2025-26", 1200000, domain.RegimeNew, fy25, "60000.00"},
		{"one rupee into a slab", 300001, domain.RegimeNew, fy24, "0.05"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tax, err := slabs.TaxOnSlabIncome(money.Rupees(tc.income), tc.regime, tc.year)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, tax.String())
		})
	}
}

func TestRuleBookSlabs_Rebate(t *testing.T) {
	slabs := NewRuleBookSlabs(domain.DefaultRuleBook())
	fy24 := domain.MustTaxYear(2024)

	rebate, err := slabs.Rebate(money.Rupees(700000), money.Rupees(20000), domain.RegimeNew, fy24)
	require.NoError(t, err)
	assert.Equal(t, "20000.00", rebate.String(), "rebate capped at tax")

	rebate, err = slabs.Rebate(money.Rupees(700001), money.Rupees(20000), domain.RegimeNew, fy24)
	require.NoError(t, err)
	assert.True(t, rebate.IsZero(), "no rebate above the limit")

	rebate, err = slabs.Rebate(money.Rupees(1200000), money.Rupees(60000), domain.RegimeNew, domain.MustTaxYear(2025))
	require.NoError(t, err)
	assert.Equal(t, "60000.00", rebate.String())
}

func TestRuleBookSlabs_Surcharge(t *testing.T) {
	slabs := NewRuleBookSlabs(domain.DefaultRuleBook())
	fy24 := domain.MustTaxYear(2024)
	tax := money.Rupees(100)

	testCases := []struct {
		desc     string
		income   int64
		regime   domain.Regime
		expected string
	}{
		{"at threshold", 5000000, domain.RegimeOld, "0.00"},
		{"first band", 6000000, domain.RegimeOld, "10.00"},
		{"second band", 15000000, domain.RegimeOld, "15.00"},
		{"top band old regime", 60000000, domain.RegimeOld, "37.00"},
		{"top band capped in new regime", 60000000, domain.RegimeNew, "25.00"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := slabs.Surcharge(tax, money.Rupees(tc.income), tc.regime, fy24)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.String())
		})
	}
}

func TestRuleBookSlabs_UnknownYear(t *testing.T) {
	slabs := NewRuleBookSlabs(domain.DefaultRuleBook())
	_, err := slabs.TaxOnSlabIncome(money.Rupees(1), domain.RegimeOld, domain.MustTaxYear(2010))
	assert.ErrorIs(t, err, domain.ErrRulesUnavailable)

	_, err = slabs.Cess(money.Rupees(1), domain.MustTaxYear(2010))
	assert.ErrorIs(t, err, domain.ErrRulesUnavailable)
}

func TestCIITable_IndexFor(t *testing.T) {
	cii := NewCIITable(domain.DefaultRuleBook())

	idx, err := cii.IndexFor(domain.MustTaxYear(2024))
	require.NoError(t, err)
	assert.Equal(t, "363", idx.String())

	idx, err = cii.IndexFor(domain.MustTaxYear(1995))
	require.NoError(t, err)
	assert.Equal(t, "100", idx.String(), "pre-base years use the base index")

	_, err = cii.IndexFor(domain.MustTaxYear(2030))
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestDeductionList_TotalDeductions(t *testing.T) {
	list := DeductionList{Items: []DeductionEntry{
		{Section: "80C", Description: "PPF", Amount: money.Rupees(100000), Cap: money.Rupees(150000)},
		{Section: "80C", Description: "ELSS", Amount: money.Rupees(90000), Cap: money.Rupees(150000)},
		{Section: "80D", Description: "Health insurance", Amount: money.Rupees(20000), Cap: money.Rupees(25000)},
		{Section: "80CCD(2)", Description: "Employer NPS", Amount: money.Rupees(60000),
			Regimes: []domain.Regime{domain.RegimeOld, domain.RegimeNew}},
	}}
	fy24 := domain.MustTaxYear(2024)

	total, err := list.TotalDeductions(domain.RegimeOld, fy24)
	require.NoError(t, err)
	assert.Equal(t, "230000.00", total.String())

	total, err = list.TotalDeductions(domain.RegimeNew, fy24)
	require.NoError(t, err)
	assert.Equal(t, "60000.00", total.String())

	entries, err := list.Entries(domain.RegimeNew, fy24)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "80CCD(2)", entries[0].Section)
}
