package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/incometax/taxcalc/pkg/dateutil"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

// PayrollKey identifies one employee's salary for one calendar month.
type PayrollKey struct {
	EmployeeID     string     `json:"employee_id"`
	OrganisationID string     `json:"organisation_id"`
	Year           int        `json:"year"`
	Month          time.Month `json:"month"`
}

func (k PayrollKey) Validate() error {
	if strings.TrimSpace(k.EmployeeID) == "" {
		return invalid("employee_id", "is required")
	}
	if strings.TrimSpace(k.OrganisationID) == "" {
		return invalid("organisation_id", "is required")
	}
	if k.Month < time.January || k.Month > time.December {
		return invalid("month", "%d is not a calendar month", k.Month)
	}
	if k.Year < minTaxYear || k.Year > maxTaxYear {
		return invalid("year", "%d out of range", k.Year)
	}
	return nil
}

func (k PayrollKey) String() string {
	return fmt.Sprintf("%s/%s/%04d-%02d", k.OrganisationID, k.EmployeeID, k.Year, int(k.Month))
}

// TaxYear is the financial year the month falls in.
func (k PayrollKey) TaxYear() TaxYear {
	return TaxYearOf(time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC))
}

// LWPDetail records leave without pay for the month.
type LWPDetail struct {
	WorkingDaysInPeriod int `json:"working_days_in_period"`
	LWPDays             int `json:"lwp_days"`
	TotalDaysInMonth    int `json:"total_days_in_month"`
}

func (d LWPDetail) EffectiveWorkingDays() int { return d.WorkingDaysInPeriod - d.LWPDays }

// ProrationFactor is effective working days over calendar days in the month.
func (d LWPDetail) ProrationFactor() decimal.Decimal {
	return decimal.NewFromInt(int64(d.EffectiveWorkingDays())).Div(decimal.NewFromInt(int64(d.TotalDaysInMonth)))
}

// PayrollStatus is derived from the payout flags.
type PayrollStatus string

const (
	PayrollNotComputed PayrollStatus = "not_computed"
	PayrollComputed    PayrollStatus = "computed"
	PayrollApproved    PayrollStatus = "approved"
	PayrollRejected    PayrollStatus = "rejected"
	PayrollSalaryPaid  PayrollStatus = "salary_paid"
	PayrollTDSPaid     PayrollStatus = "tds_paid"
	PayrollPaid        PayrollStatus = "paid"
)

// MonthlySalaryInput is everything needed to open a monthly salary.
type MonthlySalaryInput struct {
	Key                 PayrollKey
	Regime              Regime
	Salary              SalaryIncome
	Perquisites         money.Money
	PayrollDeductions   money.Money
	Retirement          *RetirementBenefits
	WorkingDaysInPeriod int
	LWPDays             int
}

// MonthlySalary is one month's payout. Its status moves through computed,
// approved (or rejected) and then salary and TDS payment.
type MonthlySalary struct {
	id                uuid.UUID
	key               PayrollKey
	regime            Regime
	salary            SalaryIncome
	perquisites       money.Money
	payrollDeductions money.Money
	retirement        *RetirementBenefits
	lwp               LWPDetail

	grossPay money.Money
	tds      money.Money
	netPay   money.Money

	computed        bool
	approved        bool
	rejected        bool
	salaryPaid      bool
	tdsPaid         bool
	rejectionReason string

	createdAt time.Time
	updatedAt time.Time
}

func NewMonthlySalary(in MonthlySalaryInput) (*MonthlySalary, error) {
	if err := in.Key.Validate(); err != nil {
		return nil, err
	}
	if !in.Regime.Valid() {
		return nil, invalid("regime", "%q must be 'old' or 'new'", in.Regime)
	}
	days := dateutil.DaysInMonth(in.Key.Year, in.Key.Month)
	if in.WorkingDaysInPeriod < 0 || in.WorkingDaysInPeriod > days {
		return nil, invalid("working_days_in_period", "%d is outside 0..%d", in.WorkingDaysInPeriod, days)
	}
	if in.LWPDays < 0 || in.LWPDays > in.WorkingDaysInPeriod {
		return nil, invalid("lwp_days", "%d is outside 0..%d", in.LWPDays, in.WorkingDaysInPeriod)
	}
	cur := in.Salary.Currency()
	if err := alignCurrency("monthly_salary", cur, &in.Perquisites, &in.PayrollDeductions); err != nil {
		return nil, err
	}
	zero := money.Zero(cur)
	ts := now()
	return &MonthlySalary{
		id:                uuid.New(),
		key:               in.Key,
		regime:            in.Regime,
		salary:            in.Salary,
		perquisites:       in.Perquisites,
		payrollDeductions: in.PayrollDeductions,
		retirement:        in.Retirement,
		lwp: LWPDetail{
			WorkingDaysInPeriod: in.WorkingDaysInPeriod,
			LWPDays:             in.LWPDays,
			TotalDaysInMonth:    days,
		},
		grossPay:  zero,
		tds:       zero,
		netPay:    zero,
		createdAt: ts,
		updatedAt: ts,
	}, nil
}

func (m *MonthlySalary) ID() uuid.UUID                   { return m.id }
func (m *MonthlySalary) Key() PayrollKey                 { return m.key }
func (m *MonthlySalary) TaxYear() TaxYear                { return m.key.TaxYear() }
func (m *MonthlySalary) Regime() Regime                  { return m.regime }
func (m *MonthlySalary) Salary() SalaryIncome            { return m.salary }
func (m *MonthlySalary) Perquisites() money.Money        { return m.perquisites }
func (m *MonthlySalary) PayrollDeductions() money.Money  { return m.payrollDeductions }
func (m *MonthlySalary) Retirement() *RetirementBenefits { return m.retirement }
func (m *MonthlySalary) LWP() LWPDetail                  { return m.lwp }
func (m *MonthlySalary) GrossPay() money.Money           { return m.grossPay }
func (m *MonthlySalary) TDS() money.Money                { return m.tds }
func (m *MonthlySalary) NetPay() money.Money             { return m.netPay }
func (m *MonthlySalary) RejectionReason() string         { return m.rejectionReason }
func (m *MonthlySalary) CreatedAt() time.Time            { return m.createdAt }
func (m *MonthlySalary) UpdatedAt() time.Time            { return m.updatedAt }

func (m *MonthlySalary) ProrationFactor() decimal.Decimal { return m.lwp.ProrationFactor() }

// Status derives the payout state. Paid requires both salary and TDS payment.
func (m *MonthlySalary) Status() PayrollStatus {
	switch {
	case m.salaryPaid && m.tdsPaid:
		return PayrollPaid
	case m.salaryPaid:
		return PayrollSalaryPaid
	case m.tdsPaid:
		return PayrollTDSPaid
	case m.rejected:
		return PayrollRejected
	case m.approved:
		return PayrollApproved
	case m.computed:
		return PayrollComputed
	}
	return PayrollNotComputed
}

func (m *MonthlySalary) transitionErr(action string) error {
	return fmt.Errorf("%s: %s from %s: %w", m.key, action, m.Status(), ErrInvalidTransition)
}

// RecordComputation stores the payout figures. A rejected payout may be
// recomputed; an approved or paid one may not.
func (m *MonthlySalary) RecordComputation(gross, tds, net money.Money) error {
	switch m.Status() {
	case PayrollNotComputed, PayrollComputed, PayrollRejected:
	default:
		return m.transitionErr("compute")
	}
	m.grossPay, m.tds, m.netPay = gross, tds, net
	m.computed = true
	m.rejected = false
	m.rejectionReason = ""
	m.updatedAt = now()
	return nil
}

func (m *MonthlySalary) Approve() error {
	if m.Status() != PayrollComputed {
		return m.transitionErr("approve")
	}
	m.approved = true
	m.updatedAt = now()
	return nil
}

func (m *MonthlySalary) Reject(reason string) error {
	switch m.Status() {
	case PayrollComputed, PayrollApproved:
	default:
		return m.transitionErr("reject")
	}
	m.rejected = true
	m.approved = false
	m.rejectionReason = reason
	m.updatedAt = now()
	return nil
}

func (m *MonthlySalary) MarkSalaryPaid() error {
	switch m.Status() {
	case PayrollApproved, PayrollTDSPaid:
	default:
		return m.transitionErr("mark salary paid")
	}
	m.salaryPaid = true
	m.updatedAt = now()
	return nil
}

func (m *MonthlySalary) MarkTDSPaid() error {
	switch m.Status() {
	case PayrollApproved, PayrollSalaryPaid:
	default:
		return m.transitionErr("mark tds paid")
	}
	m.tdsPaid = true
	m.updatedAt = now()
	return nil
}
