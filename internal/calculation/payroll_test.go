package calculation

import (
	"context"
	"testing"
	"time"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthly(t *testing.T, employee string, basic int64, working, lwp int, payrollDeductions int64) *domain.MonthlySalary {
	t.Helper()
	s, err := domain.NewSalaryIncome(domain.SalaryComponents{Basic: money.Rupees(basic)}, domain.SalaryExemptionInputs{})
	require.NoError(t, err)
	m, err := domain.NewMonthlySalary(domain.MonthlySalaryInput{
		Key:                 domain.PayrollKey{EmployeeID: employee, OrganisationID: "ORG", Year: 2024, Month: time.June},
		Regime:              domain.RegimeNew,
		Salary:              s,
		PayrollDeductions:   money.Rupees(payrollDeductions),
		WorkingDaysInPeriod: working,
		LWPDays:             lwp,
	})
	require.NoError(t, err)
	return m
}

func TestEngine_ProjectMonth_OneOffBonusCountedOnce(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())
	s, err := domain.NewSalaryIncome(domain.SalaryComponents{
		Basic: money.Rupees(50000),
		Bonus: money.Rupees(100000),
	}, domain.SalaryExemptionInputs{})
	require.NoError(t, err)
	m, err := domain.NewMonthlySalary(domain.MonthlySalaryInput{
		Key:                 domain.PayrollKey{EmployeeID: "E-2", OrganisationID: "ORG", Year: 2024, Month: time.June},
		Regime:              domain.RegimeNew,
		Salary:              s,
		PayrollDeductions:   money.Rupees(0),
		WorkingDaysInPeriod: 30,
	})
	require.NoError(t, err)

	payout, err := engine.ProjectMonth(m, nil)
	require.NoError(t, err)
	// annual 600000 basic plus one 100000 bonus stays inside the rebate
	assert.Equal(t, "150000.00", payout.GrossPay.String())
	assert.Equal(t, "0.00", payout.TDS.String())
	assert.Equal(t, "150000.00", payout.NetPay.String())
}

func TestEngine_ProjectMonth(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())

	testCases := []struct {
		desc  string
		basic int64
		lwp   int
		pf    int64
		gross string
		tds   string
		net   string
	}{
		{"leave without pay under rebate", 30000, 5, 1800, "25000.00", "0.00", "23200.00"},
		// annual 1200000 under the new regime is 83200 in tax
		{"full month with tds", 100000, 0, 0, "100000.00", "6933.33", "93066.67"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			m := monthly(t, "E-1", tc.basic, 30, tc.lwp, tc.pf)
			payout, err := engine.ProjectMonth(m, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.gross, payout.GrossPay.String())
			assert.Equal(t, tc.tds, payout.TDS.String())
			assert.Equal(t, tc.net, payout.NetPay.String())
			assert.Equal(t, domain.PayrollComputed, m.Status())
			assert.True(t, m.NetPay().Equal(payout.NetPay))
			assert.Equal(t, time.June, payout.Month)
		})
	}
}

func TestEngine_ProjectMonth_WithholdingExceedsPay(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())
	m := monthly(t, "E-1", 30000, 30, 5, 50000)

	_, err := engine.ProjectMonth(m, nil)
	assert.ErrorIs(t, err, ErrWithholdingExceedsPay)
	assert.Equal(t, domain.PayrollNotComputed, m.Status())
}

func TestEngine_RunPayroll(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())
	approved := monthly(t, "E-3", 30000, 30, 0, 0)
	require.NoError(t, approved.RecordComputation(money.Rupees(30000), money.Rupees(0), money.Rupees(30000)))
	require.NoError(t, approved.Approve())

	items := []PayrollItem{
		{Salary: monthly(t, "E-1", 30000, 30, 5, 0)},
		{Salary: monthly(t, "E-2", 100000, 30, 0, 0)},
		{Salary: approved},
		{Salary: monthly(t, "E-4", 50000, 30, 0, 0)},
	}

	results := engine.RunPayroll(context.Background(), 2, items)
	require.Len(t, results, len(items))
	for i, r := range results {
		assert.Same(t, items[i].Salary, r.Salary, "results keep input order")
	}
	require.NoError(t, results[0].Err)
	assert.Equal(t, "25000.00", results[0].Payout.GrossPay.String())
	require.NoError(t, results[1].Err)
	assert.Equal(t, "E-2", results[1].Payout.EmployeeID)
	assert.ErrorIs(t, results[2].Err, domain.ErrInvalidTransition)
	assert.Nil(t, results[2].Payout)
	require.NoError(t, results[3].Err)
}

func TestEngine_RunPayroll_Cancelled(t *testing.T) {
	engine := NewEngine(domain.DefaultRuleBook())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := engine.RunPayroll(ctx, 0, []PayrollItem{
		{Salary: monthly(t, "E-1", 30000, 30, 0, 0)},
		{Salary: monthly(t, "E-2", 30000, 30, 0, 0)},
	})
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Payout)
		assert.Equal(t, domain.PayrollNotComputed, r.Salary.Status())
	}
}
