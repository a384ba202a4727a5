package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonthly(t *testing.T, working, lwp int) *MonthlySalary {
	t.Helper()
	s, err := NewSalaryIncome(SalaryComponents{Basic: rupees(30000)}, SalaryExemptionInputs{})
	require.NoError(t, err)
	m, err := NewMonthlySalary(MonthlySalaryInput{
		Key:                 PayrollKey{EmployeeID: "E-1", OrganisationID: "ORG", Year: 2024, Month: time.June},
		Regime:              RegimeNew,
		Salary:              s,
		WorkingDaysInPeriod: working,
		LWPDays:             lwp,
	})
	require.NoError(t, err)
	return m
}

func TestMonthlySalary_LWPProration(t *testing.T) {
	m := newTestMonthly(t, 30, 5)
	assert.Equal(t, 25, m.LWP().EffectiveWorkingDays())
	assert.Equal(t, 30, m.LWP().TotalDaysInMonth)

	prorated, err := m.Salary().Prorate(m.ProrationFactor())
	require.NoError(t, err)
	assertMoney(t, "25000.00", prorated.Components().Basic)
	assert.Equal(t, MustTaxYear(2024), m.TaxYear())
}

func TestNewMonthlySalary_Validation(t *testing.T) {
	s, err := NewSalaryIncome(SalaryComponents{Basic: rupees(30000)}, SalaryExemptionInputs{})
	require.NoError(t, err)
	key := PayrollKey{EmployeeID: "E-1", OrganisationID: "ORG", Year: 2024, Month: time.February}

	testCases := []struct {
		desc    string
		key     PayrollKey
		working int
		lwp     int
	}{
		{"working days beyond month", key, 30, 0},
		{"lwp beyond working days", key, 20, 21},
		{"negative lwp", key, 20, -1},
		{"invalid month", PayrollKey{EmployeeID: "E", OrganisationID: "O", Year: 2024, Month: 13}, 20, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := NewMonthlySalary(MonthlySalaryInput{
				Key: tc.key, Regime: RegimeOld, Salary: s,
				WorkingDaysInPeriod: tc.working, LWPDays: tc.lwp,
			})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// leap-year February has 29 days
	_, err = NewMonthlySalary(MonthlySalaryInput{Key: key, Regime: RegimeOld, Salary: s, WorkingDaysInPeriod: 29})
	assert.NoError(t, err)
}

func TestMonthlySalary_StatusTransitions(t *testing.T) {
	m := newTestMonthly(t, 30, 0)
	assert.Equal(t, PayrollNotComputed, m.Status())
	assert.ErrorIs(t, m.Approve(), ErrInvalidTransition)
	assert.ErrorIs(t, m.MarkSalaryPaid(), ErrInvalidTransition)

	require.NoError(t, m.RecordComputation(rupees(30000), rupees(1000), rupees(29000)))
	assert.Equal(t, PayrollComputed, m.Status())

	require.NoError(t, m.Reject("wrong LWP"))
	assert.Equal(t, PayrollRejected, m.Status())
	assert.Equal(t, "wrong LWP", m.RejectionReason())

	require.NoError(t, m.RecordComputation(rupees(30000), rupees(900), rupees(29100)))
	assert.Equal(t, PayrollComputed, m.Status())
	assert.Empty(t, m.RejectionReason())

	require.NoError(t, m.Approve())
	assert.Equal(t, PayrollApproved, m.Status())
	assert.ErrorIs(t, m.RecordComputation(rupees(1), rupees(0), rupees(1)), ErrInvalidTransition)

	require.NoError(t, m.MarkSalaryPaid())
	assert.Equal(t, PayrollSalaryPaid, m.Status(), "salary alone is not fully paid")
	assert.ErrorIs(t, m.MarkSalaryPaid(), ErrInvalidTransition)
	assert.ErrorIs(t, m.Reject("late"), ErrInvalidTransition)

	require.NoError(t, m.MarkTDSPaid())
	assert.Equal(t, PayrollPaid, m.Status())
}

func TestMonthlySalary_TDSBeforeSalary(t *testing.T) {
	m := newTestMonthly(t, 30, 0)
	require.NoError(t, m.RecordComputation(rupees(30000), rupees(1000), rupees(29000)))
	require.NoError(t, m.Approve())
	require.NoError(t, m.MarkTDSPaid())
	assert.Equal(t, PayrollTDSPaid, m.Status())
	require.NoError(t, m.MarkSalaryPaid())
	assert.Equal(t, PayrollPaid, m.Status())
}

func TestMonthlySalaryDocument_RoundTrip(t *testing.T) {
	m := newTestMonthly(t, 30, 5)
	require.NoError(t, m.RecordComputation(rupees(25000), rupees(500), rupees(24500)))
	require.NoError(t, m.Approve())

	data, err := json.Marshal(m.ToDocument())
	require.NoError(t, err)
	var doc MonthlySalaryDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	restored, err := MonthlySalaryFromDocument(doc)
	require.NoError(t, err)
	again, err := json.Marshal(restored.ToDocument())
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
	assert.Equal(t, PayrollApproved, restored.Status())
}
