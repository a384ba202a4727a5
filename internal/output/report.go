package output

import (
	"fmt"
	"time"

	"github.com/incometax/taxcalc/internal/calculation"
	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
)

// Report is the input to every formatter. Computation, Comparison and
// Payouts are independent sections; formatters render the ones present.
type Report struct {
	Title          string                   `json:"title"`
	EmployeeID     string                   `json:"employee_id,omitempty"`
	OrganisationID string                   `json:"organisation_id,omitempty"`
	TaxYear        domain.TaxYear           `json:"tax_year"`
	Computation    *domain.TaxComputation   `json:"computation,omitempty"`
	Comparison     *domain.RegimeComparison `json:"comparison,omitempty"`
	Payouts        []PayoutLine             `json:"payouts,omitempty"`
	Assumptions    []string                 `json:"assumptions,omitempty"`
	GeneratedAt    time.Time                `json:"generated_at"`
}

// PayoutLine is one employee's month in a payroll report. Error is set
// instead of the figures when the projection failed.
type PayoutLine struct {
	EmployeeID        string               `json:"employee_id"`
	Period            string               `json:"period"`
	Regime            domain.Regime        `json:"regime"`
	WorkingDays       int                  `json:"working_days"`
	LWPDays           int                  `json:"lwp_days"`
	Gross             money.Money          `json:"gross"`
	TDS               money.Money          `json:"tds"`
	PayrollDeductions money.Money          `json:"payroll_deductions"`
	Net               money.Money          `json:"net"`
	Status            domain.PayrollStatus `json:"status"`
	Error             string               `json:"error,omitempty"`
}

// PayoutLineOf flattens a monthly salary.
func PayoutLineOf(ms *domain.MonthlySalary) PayoutLine {
	k := ms.Key()
	lwp := ms.LWP()
	return PayoutLine{
		EmployeeID:        k.EmployeeID,
		Period:            fmt.Sprintf("%04d-%02d", k.Year, int(k.Month)),
		Regime:            ms.Regime(),
		WorkingDays:       lwp.WorkingDaysInPeriod,
		LWPDays:           lwp.LWPDays,
		Gross:             ms.GrossPay(),
		TDS:               ms.TDS(),
		PayrollDeductions: ms.PayrollDeductions(),
		Net:               ms.NetPay(),
		Status:            ms.Status(),
	}
}

// PayoutLines converts payroll results in order.
func PayoutLines(results []calculation.PayrollResult) []PayoutLine {
	lines := make([]PayoutLine, 0, len(results))
	for _, r := range results {
		if r.Salary == nil {
			continue
		}
		line := PayoutLineOf(r.Salary)
		if r.Err != nil {
			line.Error = r.Err.Error()
		}
		lines = append(lines, line)
	}
	return lines
}

// NewComputationReport reports one regime's computation for a record key.
func NewComputationReport(key domain.RecordKey, c domain.TaxComputation) *Report {
	return &Report{
		Title:          fmt.Sprintf("Income tax computation %s (%s regime)", c.TaxYear, c.Regime),
		EmployeeID:     key.EmployeeID,
		OrganisationID: key.OrganisationID,
		TaxYear:        c.TaxYear,
		Computation:    &c,
		Assumptions:    DefaultAssumptions,
		GeneratedAt:    time.Now().UTC(),
	}
}

// NewComparisonReport reports both regimes side by side.
func NewComparisonReport(key domain.RecordKey, cmp domain.RegimeComparison) *Report {
	return &Report{
		Title:          fmt.Sprintf("Regime comparison %s", key.TaxYear),
		EmployeeID:     key.EmployeeID,
		OrganisationID: key.OrganisationID,
		TaxYear:        key.TaxYear,
		Comparison:     &cmp,
		Assumptions:    DefaultAssumptions,
		GeneratedAt:    time.Now().UTC(),
	}
}

// NewPayrollReport reports a payroll run for one organisation.
func NewPayrollReport(organisationID string, year domain.TaxYear, lines []PayoutLine) *Report {
	return &Report{
		Title:          fmt.Sprintf("Payroll %s", organisationID),
		OrganisationID: organisationID,
		TaxYear:        year,
		Payouts:        lines,
		GeneratedAt:    time.Now().UTC(),
	}
}

// GenerateReport writes r in the named format to dir and returns the file name.
func GenerateReport(r *Report, format, dir string) (string, error) {
	f, err := Lookup(format)
	if err != nil {
		return "", err
	}
	return WriteFormatted(f, r, dir)
}
