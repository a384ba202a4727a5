package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/incometax/taxcalc/internal/calculation"
	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/internal/logger"
	"github.com/incometax/taxcalc/internal/store"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fy24 = domain.MustTaxYear(2024)
	key  = domain.RecordKey{EmployeeID: "E-1", OrganisationID: "ACME", TaxYear: fy24}
)

func salaryIncome(t *testing.T, annual int64) domain.IncomeSet {
	t.Helper()
	s, err := domain.NewSalaryIncome(domain.SalaryComponents{Basic: money.Rupees(annual)}, domain.SalaryExemptionInputs{})
	require.NoError(t, err)
	return domain.IncomeSet{Salary: &s}
}

func newService(t *testing.T) (*TaxationService, *RecordingPublisher) {
	t.Helper()
	pub := &RecordingPublisher{}
	return NewTaxationService(store.NewMemoryStore(), calculation.NewEngine(domain.DefaultRuleBook()), pub), pub
}

var section80C = calculation.DeductionList{Items: []calculation.DeductionEntry{
	{Section: "80C", Amount: money.Rupees(150000), Cap: money.Rupees(150000)},
}}

func TestTaxationService_ComputeAndFinalize(t *testing.T) {
	ctx := context.Background()
	svc, pub := newService(t)

	_, err := svc.Open(ctx, key, domain.RegimeNew, salaryIncome(t, 1200000))
	require.NoError(t, err)
	_, err = svc.Open(ctx, key, domain.RegimeNew, salaryIncome(t, 1200000))
	assert.ErrorIs(t, err, domain.ErrDuplicateRecord)

	_, err = svc.Finalize(ctx, key)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	c, err := svc.Compute(ctx, key, section80C)
	require.NoError(t, err)
	assert.Equal(t, "83200.00", c.TotalTax.String())

	events := pub.Events()
	require.Len(t, events, 1)
	calculated, ok := events[0].(domain.TaxationCalculated)
	require.True(t, ok)
	assert.Equal(t, "E-1", calculated.EmployeeID)
	assert.Equal(t, "83200.00", calculated.TotalTax.String())

	rec, err := svc.Finalize(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, rec.Status())

	_, err = svc.Compute(ctx, key, section80C)
	assert.ErrorIs(t, err, domain.ErrFinalizedRecord)
	_, err = svc.UpdateIncome(ctx, key, salaryIncome(t, 1))
	assert.ErrorIs(t, err, domain.ErrFinalizedRecord)
	_, err = svc.ChangeRegime(ctx, key, domain.RegimeOld)
	assert.ErrorIs(t, err, domain.ErrFinalizedRecord)

	stored, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, stored.Status())
	got, ok := stored.Computation()
	require.True(t, ok)
	assert.Equal(t, "83200.00", got.TotalTax.String())
	assert.Len(t, pub.Events(), 1, "failed operations publish nothing")
}

func TestTaxationService_Compare(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.Open(ctx, key, domain.RegimeOld, salaryIncome(t, 1200000))
	require.NoError(t, err)

	cmp, err := svc.Compare(ctx, key, section80C)
	require.NoError(t, err)
	assert.Equal(t, "132600.00", cmp.Old.TotalTax.String())
	assert.Equal(t, "83200.00", cmp.New.TotalTax.String())
	assert.Equal(t, domain.RegimeNew, cmp.Recommended)
	assert.Equal(t, "49400.00", cmp.Savings.String())

	rec, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, rec.Status(), "comparison does not touch the record")
}

func TestTaxationService_ChangeRegime(t *testing.T) {
	ctx := context.Background()
	svc, pub := newService(t)
	_, err := svc.Open(ctx, key, domain.RegimeNew, salaryIncome(t, 1200000))
	require.NoError(t, err)
	_, err = svc.Compute(ctx, key, section80C)
	require.NoError(t, err)

	rec, err := svc.ChangeRegime(ctx, key, domain.RegimeOld)
	require.NoError(t, err)
	assert.Equal(t, domain.RegimeOld, rec.Regime())
	assert.Equal(t, domain.StatusDraft, rec.Status(), "a regime change drops the computation")

	_, err = svc.ChangeRegime(ctx, key, domain.RegimeOld)
	require.NoError(t, err)

	events := pub.Events()
	require.Len(t, events, 2)
	changed, ok := events[1].(domain.TaxRegimeChanged)
	require.True(t, ok)
	assert.Equal(t, domain.RegimeNew, changed.From)
	assert.Equal(t, domain.RegimeOld, changed.To)

	c, err := svc.Compute(ctx, key, section80C)
	require.NoError(t, err)
	assert.Equal(t, "132600.00", c.TotalTax.String())
}

func TestTaxationService_NotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Compute(context.Background(), key, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, domain.Event) error { return errors.New("broker down") }

func TestTaxationService_PublishFailureKeepsResult(t *testing.T) {
	ctx := context.Background()
	svc := NewTaxationService(store.NewMemoryStore(), calculation.NewEngine(domain.DefaultRuleBook()), failingPublisher{})
	_, err := svc.Open(ctx, key, domain.RegimeNew, salaryIncome(t, 1200000))
	require.NoError(t, err)

	_, err = svc.Compute(ctx, key, nil)
	require.NoError(t, err)
	rec, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComputed, rec.Status())
}

func payrollItem(t *testing.T, employee string, basic int64) calculation.PayrollItem {
	t.Helper()
	s, err := domain.NewSalaryIncome(domain.SalaryComponents{Basic: money.Rupees(basic)}, domain.SalaryExemptionInputs{})
	require.NoError(t, err)
	ms, err := domain.NewMonthlySalary(domain.MonthlySalaryInput{
		Key:                 domain.PayrollKey{EmployeeID: employee, OrganisationID: "ACME", Year: 2024, Month: time.June},
		Regime:              domain.RegimeNew,
		Salary:              s,
		WorkingDaysInPeriod: 30,
	})
	require.NoError(t, err)
	return calculation.PayrollItem{Salary: ms}
}

func TestTaxationService_RunMonthlyPayroll(t *testing.T) {
	ctx := context.Background()
	svc, pub := newService(t)
	svc.SetWorkers(2)

	results, err := svc.RunMonthlyPayroll(ctx, []calculation.PayrollItem{
		payrollItem(t, "E-1", 100000),
		payrollItem(t, "E-2", 30000),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Payout)
	}
	assert.Equal(t, "6933.33", results[0].Payout.TDS.String())
	assert.Len(t, pub.Events(), 2)

	june := domain.PayrollKey{EmployeeID: "E-1", OrganisationID: "ACME", Year: 2024, Month: time.June}
	stored, err := svc.GetPayout(ctx, june)
	require.NoError(t, err)
	assert.Equal(t, domain.PayrollComputed, stored.Status())
	assert.Equal(t, "93066.67", stored.NetPay().String())

	// a computed month is replaced by a rerun
	results, err = svc.RunMonthlyPayroll(ctx, []calculation.PayrollItem{payrollItem(t, "E-1", 120000)})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	stored, err = svc.GetPayout(ctx, june)
	require.NoError(t, err)
	assert.Equal(t, "120000.00", stored.GrossPay().String())

	_, err = svc.ApprovePayout(ctx, june)
	require.NoError(t, err)

	// an approved month is not
	results, err = svc.RunMonthlyPayroll(ctx, []calculation.PayrollItem{payrollItem(t, "E-1", 50000)})
	require.NoError(t, err)
	assert.ErrorIs(t, results[0].Err, domain.ErrInvalidTransition)
	assert.Nil(t, results[0].Payout)
	stored, err = svc.GetPayout(ctx, june)
	require.NoError(t, err)
	assert.Equal(t, "120000.00", stored.GrossPay().String())

	_, err = svc.MarkTDSPaid(ctx, june)
	require.NoError(t, err)
	paid, err := svc.MarkSalaryPaid(ctx, june)
	require.NoError(t, err)
	assert.Equal(t, domain.PayrollPaid, paid.Status())

	_, err = svc.RejectPayout(ctx, june, "too late")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTaxationService_RejectAndRerun(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.RunMonthlyPayroll(ctx, []calculation.PayrollItem{payrollItem(t, "E-1", 100000)})
	require.NoError(t, err)

	june := domain.PayrollKey{EmployeeID: "E-1", OrganisationID: "ACME", Year: 2024, Month: time.June}
	rejected, err := svc.RejectPayout(ctx, june, "wrong bank account")
	require.NoError(t, err)
	assert.Equal(t, domain.PayrollRejected, rejected.Status())
	assert.Equal(t, "wrong bank account", rejected.RejectionReason())

	results, err := svc.RunMonthlyPayroll(ctx, []calculation.PayrollItem{payrollItem(t, "E-1", 100000)})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	stored, err := svc.GetPayout(ctx, june)
	require.NoError(t, err)
	assert.Equal(t, domain.PayrollComputed, stored.Status())
}

func TestTaxationService_Lists(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	for _, id := range []string{"E-2", "E-1"} {
		k := domain.RecordKey{EmployeeID: id, OrganisationID: "ACME", TaxYear: fy24}
		_, err := svc.Open(ctx, k, domain.RegimeNew, salaryIncome(t, 500000))
		require.NoError(t, err)
	}
	_, err := svc.Open(ctx, domain.RecordKey{EmployeeID: "E-3", OrganisationID: "OTHER", TaxYear: fy24}, domain.RegimeNew, salaryIncome(t, 1))
	require.NoError(t, err)

	recs, err := svc.List(ctx, "ACME", fy24)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "E-1", recs[0].Key().EmployeeID)

	_, err = svc.RunMonthlyPayroll(ctx, []calculation.PayrollItem{payrollItem(t, "E-1", 100000)})
	require.NoError(t, err)
	payouts, err := svc.ListPayouts(ctx, "ACME", 2024, time.June)
	require.NoError(t, err)
	assert.Len(t, payouts, 1)
	payouts, err = svc.ListPayouts(ctx, "ACME", 2024, time.July)
	require.NoError(t, err)
	assert.Empty(t, payouts)
}

func TestLogPublisher_HashesEmployee(t *testing.T) {
	var buf bytes.Buffer
	p := &LogPublisher{Log: zerolog.New(&buf)}

	err := p.Publish(context.Background(), domain.PayoutCalculated{
		EmployeeID:     "E-SECRET",
		OrganisationID: "ACME",
		Year:           2024,
		Month:          time.June,
		GrossPay:       money.Rupees(100000),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"event":"payroll.payout_calculated"`)
	assert.Contains(t, out, logger.HashEmployeeID("E-SECRET"))
	assert.NotContains(t, out, "E-SECRET")
	assert.Contains(t, out, `"gross_pay":"100000.00"`)
}
