package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/incometax/taxcalc/pkg/money"
)

// SalaryDocument is the persisted form of a SalaryIncome.
type SalaryDocument struct {
	Components SalaryComponents      `json:"components"`
	Inputs     SalaryExemptionInputs `json:"inputs"`
	Exemptions *SalaryExemptions     `json:"exemptions,omitempty"`
}

func salaryToDocument(s SalaryIncome) *SalaryDocument {
	doc := &SalaryDocument{Components: s.components, Inputs: s.inputs}
	if s.computed {
		ex := s.exemptions
		doc.Exemptions = &ex
	}
	return doc
}

func salaryFromDocument(doc *SalaryDocument) (SalaryIncome, error) {
	s, err := NewSalaryIncome(doc.Components, doc.Inputs)
	if err != nil {
		return SalaryIncome{}, err
	}
	if doc.Exemptions != nil {
		s.exemptions = *doc.Exemptions
		s.computed = true
	}
	return s, nil
}

// TaxationDocument is the persisted form of a TaxationRecord. Restoring a
// document yields a record equal to the one it was taken from.
type TaxationDocument struct {
	ID             uuid.UUID             `json:"id"`
	EmployeeID     string                `json:"employee_id"`
	OrganisationID string                `json:"organisation_id"`
	TaxYear        TaxYear               `json:"tax_year"`
	Regime         Regime                `json:"regime"`
	Status         RecordStatus          `json:"status"`
	Salary         *SalaryDocument       `json:"salary,omitempty"`
	Perquisites    money.Money           `json:"perquisites"`
	HouseProperty  *HousePropertyDetails `json:"house_property,omitempty"`
	CapitalGains   []CapitalGainsDetails `json:"capital_gains,omitempty"`
	Retirement     *RetirementDetails    `json:"retirement,omitempty"`
	OtherIncome    *OtherIncomeSources   `json:"other_income,omitempty"`
	Computation    *TaxComputation       `json:"computation,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	FinalizedAt    time.Time             `json:"finalized_at"`
}

func (r *TaxationRecord) ToDocument() TaxationDocument {
	doc := TaxationDocument{
		ID:             r.id,
		EmployeeID:     r.key.EmployeeID,
		OrganisationID: r.key.OrganisationID,
		TaxYear:        r.key.TaxYear,
		Regime:         r.regime,
		Status:         r.status,
		Perquisites:    r.income.Perquisites,
		CreatedAt:      r.createdAt,
		UpdatedAt:      r.updatedAt,
		FinalizedAt:    r.finalizedAt,
	}
	if r.income.Salary != nil {
		doc.Salary = salaryToDocument(*r.income.Salary)
	}
	if r.income.HouseProperty != nil {
		d := r.income.HouseProperty.Details()
		doc.HouseProperty = &d
	}
	for _, cg := range r.income.CapitalGains {
		doc.CapitalGains = append(doc.CapitalGains, cg.Details())
	}
	if r.income.Retirement != nil {
		d := r.income.Retirement.Details()
		doc.Retirement = &d
	}
	if r.income.Other != nil {
		s := r.income.Other.Sources()
		doc.OtherIncome = &s
	}
	if r.computation != nil {
		c := *r.computation
		doc.Computation = &c
	}
	return doc
}

// TaxationFromDocument rebuilds a record, re-running every constructor's validation.
func TaxationFromDocument(doc TaxationDocument) (*TaxationRecord, error) {
	key := RecordKey{EmployeeID: doc.EmployeeID, OrganisationID: doc.OrganisationID, TaxYear: doc.TaxYear}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if !doc.Regime.Valid() {
		return nil, invalid("regime", "%q must be 'old' or 'new'", doc.Regime)
	}
	switch doc.Status {
	case StatusDraft, StatusComputed, StatusFinalized:
	default:
		return nil, invalid("status", "unknown status %q", doc.Status)
	}
	r := &TaxationRecord{
		id:          doc.ID,
		key:         key,
		regime:      doc.Regime,
		status:      doc.Status,
		createdAt:   doc.CreatedAt,
		updatedAt:   doc.UpdatedAt,
		finalizedAt: doc.FinalizedAt,
	}
	r.income.Perquisites = doc.Perquisites
	if doc.Salary != nil {
		s, err := salaryFromDocument(doc.Salary)
		if err != nil {
			return nil, fmt.Errorf("restore salary: %w", err)
		}
		r.income.Salary = &s
	}
	if doc.HouseProperty != nil {
		h, err := NewHousePropertyIncome(*doc.HouseProperty)
		if err != nil {
			return nil, fmt.Errorf("restore house property: %w", err)
		}
		r.income.HouseProperty = &h
	}
	for i, d := range doc.CapitalGains {
		cg, err := NewCapitalGainsIncome(d)
		if err != nil {
			return nil, fmt.Errorf("restore capital gain %d: %w", i, err)
		}
		r.income.CapitalGains = append(r.income.CapitalGains, cg)
	}
	if doc.Retirement != nil {
		b, err := NewRetirementBenefits(*doc.Retirement)
		if err != nil {
			return nil, fmt.Errorf("restore retirement benefits: %w", err)
		}
		r.income.Retirement = &b
	}
	if doc.OtherIncome != nil {
		o, err := NewOtherIncome(*doc.OtherIncome)
		if err != nil {
			return nil, fmt.Errorf("restore other income: %w", err)
		}
		r.income.Other = &o
	}
	if doc.Computation != nil {
		c := *doc.Computation
		r.computation = &c
	}
	if r.status != StatusDraft && r.computation == nil {
		return nil, invalid("computation", "missing for %s record", r.status)
	}
	return r, nil
}

// MonthlySalaryDocument is the persisted form of a MonthlySalary.
type MonthlySalaryDocument struct {
	ID                uuid.UUID          `json:"id"`
	Key               PayrollKey         `json:"key"`
	Regime            Regime             `json:"regime"`
	Salary            SalaryDocument     `json:"salary"`
	Perquisites       money.Money        `json:"perquisites"`
	PayrollDeductions money.Money        `json:"payroll_deductions"`
	Retirement        *RetirementDetails `json:"retirement,omitempty"`
	LWP               LWPDetail          `json:"lwp"`
	GrossPay          money.Money        `json:"gross_pay"`
	TDS               money.Money        `json:"tds"`
	NetPay            money.Money        `json:"net_pay"`
	Computed          bool               `json:"computed"`
	Approved          bool               `json:"approved"`
	Rejected          bool               `json:"rejected"`
	SalaryPaid        bool               `json:"salary_paid"`
	TDSPaid           bool               `json:"tds_paid"`
	RejectionReason   string             `json:"rejection_reason,omitempty"`
	Status            PayrollStatus      `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func (m *MonthlySalary) ToDocument() MonthlySalaryDocument {
	doc := MonthlySalaryDocument{
		ID:                m.id,
		Key:               m.key,
		Regime:            m.regime,
		Salary:            *salaryToDocument(m.salary),
		Perquisites:       m.perquisites,
		PayrollDeductions: m.payrollDeductions,
		LWP:               m.lwp,
		GrossPay:          m.grossPay,
		TDS:               m.tds,
		NetPay:            m.netPay,
		Computed:          m.computed,
		Approved:          m.approved,
		Rejected:          m.rejected,
		SalaryPaid:        m.salaryPaid,
		TDSPaid:           m.tdsPaid,
		RejectionReason:   m.rejectionReason,
		Status:            m.Status(),
		CreatedAt:         m.createdAt,
		UpdatedAt:         m.updatedAt,
	}
	if m.retirement != nil {
		d := m.retirement.Details()
		doc.Retirement = &d
	}
	return doc
}

// MonthlySalaryFromDocument rebuilds a monthly salary. Status is derived from
// the flags; the stored status is informational.
func MonthlySalaryFromDocument(doc MonthlySalaryDocument) (*MonthlySalary, error) {
	s, err := salaryFromDocument(&doc.Salary)
	if err != nil {
		return nil, fmt.Errorf("restore salary: %w", err)
	}
	in := MonthlySalaryInput{
		Key:                 doc.Key,
		Regime:              doc.Regime,
		Salary:              s,
		Perquisites:         doc.Perquisites,
		PayrollDeductions:   doc.PayrollDeductions,
		WorkingDaysInPeriod: doc.LWP.WorkingDaysInPeriod,
		LWPDays:             doc.LWP.LWPDays,
	}
	if doc.Retirement != nil {
		b, err := NewRetirementBenefits(*doc.Retirement)
		if err != nil {
			return nil, fmt.Errorf("restore retirement benefits: %w", err)
		}
		in.Retirement = &b
	}
	m, err := NewMonthlySalary(in)
	if err != nil {
		return nil, err
	}
	m.id = doc.ID
	m.grossPay, m.tds, m.netPay = doc.GrossPay, doc.TDS, doc.NetPay
	m.computed, m.approved, m.rejected = doc.Computed, doc.Approved, doc.Rejected
	m.salaryPaid, m.tdsPaid = doc.SalaryPaid, doc.TDSPaid
	m.rejectionReason = doc.RejectionReason
	m.createdAt, m.updatedAt = doc.CreatedAt, doc.UpdatedAt
	return m, nil
}
