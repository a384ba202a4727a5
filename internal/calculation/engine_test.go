package calculation

import (
	"fmt"
	"testing"
	"time"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/dateutil"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fy24 = domain.MustTaxYear(2024)

func basicSalary(t *testing.T, annual int64) *domain.SalaryIncome {
	t.Helper()
	s, err := domain.NewSalaryIncome(domain.SalaryComponents{Basic: money.Rupees(annual)}, domain.SalaryExemptionInputs{})
	require.NoError(t, err)
	return &s
}

func date(y int, m time.Month, d int) dateutil.Date {
	return dateutil.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// recordingLogger captures formatted info messages.
type recordingLogger struct {
	NopLogger
	infos *[]string
}

func (l recordingLogger) Infof(format string, args ...any) {
	*l.infos = append(*l.infos, fmt.Sprintf(format, args...))
}

func TestEngine_Compute_Salary(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())
	deductions := DeductionList{Items: []DeductionEntry{
		{Section: "80C", Amount: money.Rupees(150000), Cap: money.Rupees(150000)},
	}}

	testCases := []struct {
		desc     string
		regime   domain.Regime
		taxable  string
		slab     string
		cess     string
		expected string
	}{
		{"new regime ignores 80C", domain.RegimeNew, "1200000.00", "80000.00", "3200.00", "83200.00"},
		{"old regime uses 80C", domain.RegimeOld, "1050000.00", "127500.00", "5100.00", "132600.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			c, err := engine.Compute(TaxInput{
				TaxYear:    fy24,
				Regime:     tc.regime,
				Income:     domain.IncomeSet{Salary: basicSalary(t, 1200000)},
				Deductions: deductions,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.taxable, c.TaxableIncome.String())
			assert.Equal(t, tc.slab, c.SlabTax.String())
			assert.Equal(t, tc.cess, c.Cess.String())
			assert.Equal(t, tc.expected, c.TotalTax.String())
		})
	}
}

func TestEngine_Compute_RebateAndSurcharge(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())

	c, err := engine.Compute(TaxInput{TaxYear: fy24, Regime: domain.RegimeNew,
		Income: domain.IncomeSet{Salary: basicSalary(t, 700000)}})
	require.NoError(t, err)
	assert.Equal(t, "20000.00", c.SlabTax.String())
	assert.Equal(t, "20000.00", c.Rebate.String())
	assert.True(t, c.TotalTax.IsZero())

	// 12500 + 100000 + 30% of 50L = 1612500; 10% surcharge; 4% cess
	c, err = engine.Compute(TaxInput{TaxYear: fy24, Regime: domain.RegimeOld,
		Income: domain.IncomeSet{Salary: basicSalary(t, 6000000)}})
	require.NoError(t, err)
	assert.Equal(t, "1612500.00", c.SlabTax.String())
	assert.Equal(t, "161250.00", c.Surcharge.String())
	assert.Equal(t, "70950.00", c.Cess.String())
	assert.Equal(t, "1844700.00", c.TotalTax.String())
}

func TestEngine_Compute_CapitalGainsAndCasualIncome(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())
	cg, err := domain.NewCapitalGainsIncome(domain.CapitalGainsDetails{
		AssetType:     domain.AssetEquity,
		PurchaseDate:  date(2020, time.January, 1),
		SaleDate:      date(2024, time.June, 1),
		PurchasePrice: money.Rupees(500000),
		SalePrice:     money.Rupees(750000),
	})
	require.NoError(t, err)

	c, err := engine.Compute(TaxInput{TaxYear: fy24, Regime: domain.RegimeNew, Income: domain.IncomeSet{
		Salary:       basicSalary(t, 1000000),
		CapitalGains: []domain.CapitalGainsIncome{cg},
	}})
	require.NoError(t, err)
	assert.Equal(t, "150000.00", c.CapitalGainsSpecial.String())
	assert.Equal(t, "50000.00", c.SlabTax.String())
	assert.Equal(t, "15000.00", c.SpecialRateTax.String())
	assert.True(t, c.Rebate.IsZero())
	assert.Equal(t, "67600.00", c.TotalTax.String())

	other, err := domain.NewOtherIncome(domain.OtherIncomeSources{CasualWinnings: money.Rupees(100000)})
	require.NoError(t, err)
	c, err = engine.Compute(TaxInput{TaxYear: fy24, Regime: domain.RegimeOld, Income: domain.IncomeSet{Other: &other}})
	require.NoError(t, err)
	assert.True(t, c.SlabTax.IsZero())
	assert.Equal(t, "30000.00", c.SpecialRateTax.String(), "casual income gets no rebate")
	assert.Equal(t, "31200.00", c.TotalTax.String())
}

func TestEngine_Compute_HousePropertyLossSetOff(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())
	house, err := domain.NewHousePropertyIncome(domain.HousePropertyDetails{
		Type:           domain.SelfOccupied,
		InterestOnLoan: money.Rupees(250000),
	})
	require.NoError(t, err)
	income := domain.IncomeSet{Salary: basicSalary(t, 1000000), HouseProperty: &house}

	old, err := engine.Compute(TaxInput{TaxYear: fy24, Regime: domain.RegimeOld, Income: income})
	require.NoError(t, err)
	assert.Equal(t, "200000.00", old.HousePropertyLossSetOff.String())
	assert.Equal(t, "800000.00", old.GrossTotalIncome.String())
	assert.Equal(t, "75400.00", old.TotalTax.String())

	newRegime, err := engine.Compute(TaxInput{TaxYear: fy24, Regime: domain.RegimeNew, Income: income})
	require.NoError(t, err)
	assert.True(t, newRegime.HousePropertyLossSetOff.IsZero())
	assert.Equal(t, "1000000.00", newRegime.GrossTotalIncome.String())
}

func TestEngine_Compute_Errors(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())

	_, err := engine.Compute(TaxInput{TaxYear: domain.MustTaxYear(2015), Regime: domain.RegimeOld})
	assert.ErrorIs(t, err, domain.ErrRulesUnavailable)

	_, err = engine.Compute(TaxInput{TaxYear: fy24, Regime: "flat"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEngine_CompareRegimes(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())
	var infos []string
	engine.SetLogger(recordingLogger{infos: &infos})

	// both regimes rebate the whole tax at 5L
	tie, err := engine.CompareRegimes(TaxInput{TaxYear: fy24, Income: domain.IncomeSet{Salary: basicSalary(t, 500000)}})
	require.NoError(t, err)
	assert.True(t, tie.Old.TotalTax.Equal(tie.New.TotalTax))
	assert.Equal(t, domain.RegimeNew, tie.Recommended)
	assert.True(t, tie.Savings.IsZero())

	heavy := DeductionList{Items: []DeductionEntry{
		{Section: "80C", Amount: money.Rupees(150000), Cap: money.Rupees(150000)},
		{Section: "80D", Amount: money.Rupees(50000)},
		{Section: "24B", Amount: money.Rupees(400000)},
	}}
	cmp, err := engine.CompareRegimes(TaxInput{TaxYear: fy24, Income: domain.IncomeSet{Salary: basicSalary(t, 1200000)}, Deductions: heavy})
	require.NoError(t, err)
	assert.Equal(t, domain.RegimeOld, cmp.Recommended)
	assert.True(t, cmp.Savings.IsPositive())
	require.Len(t, infos, 2)
	assert.Contains(t, infos[1], "recommended=old")
}

func TestEngine_ComputeRecord(t *testing.T) {
	at := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	SetNowFunc(func() time.Time { return at })
	defer SetNowFunc(time.Now)

	engine := NewEngine(domain.DefaultRuleBook())
	rec, err := domain.NewTaxationRecord(domain.RecordKey{EmployeeID: "E-7", OrganisationID: "ORG", TaxYear: fy24}, domain.RegimeNew)
	require.NoError(t, err)
	require.NoError(t, rec.SetSalary(*basicSalary(t, 1200000)))

	evt, err := engine.ComputeRecord(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, "83200.00", evt.TotalTax.String())
	assert.Equal(t, at, evt.OccurredAt())
	assert.Equal(t, domain.StatusComputed, rec.Status())

	require.NoError(t, rec.Finalize())
	_, err = engine.ComputeRecord(rec, nil)
	assert.ErrorIs(t, err, domain.ErrFinalizedRecord)
}
