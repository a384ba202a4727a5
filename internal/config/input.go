package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/incometax/taxcalc/internal/calculation"
	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SalaryInput is a salary block: pay heads inline plus the exemption facts.
type SalaryInput struct {
	domain.SalaryComponents `yaml:",inline"`
	Exemptions              domain.SalaryExemptionInputs `yaml:"exemptions"`
}

func (s SalaryInput) build() (domain.SalaryIncome, error) {
	return domain.NewSalaryIncome(s.SalaryComponents, s.Exemptions)
}

// TaxCase is one employee's income for one financial year.
type TaxCase struct {
	EmployeeID     string                       `yaml:"employee_id"`
	OrganisationID string                       `yaml:"organisation_id"`
	TaxYear        domain.TaxYear               `yaml:"tax_year"`
	Regime         domain.Regime                `yaml:"regime"`
	Salary         *SalaryInput                 `yaml:"salary,omitempty"`
	Perquisites    money.Money                  `yaml:"perquisites"`
	HouseProperty  *domain.HousePropertyDetails `yaml:"house_property,omitempty"`
	CapitalGains   []domain.CapitalGainsDetails `yaml:"capital_gains,omitempty"`
	Retirement     *domain.RetirementDetails    `yaml:"retirement,omitempty"`
	OtherIncome    *domain.OtherIncomeSources   `yaml:"other_income,omitempty"`
	Deductions     []calculation.DeductionEntry `yaml:"deductions,omitempty"`
}

func (c *TaxCase) Key() domain.RecordKey {
	return domain.RecordKey{EmployeeID: c.EmployeeID, OrganisationID: c.OrganisationID, TaxYear: c.TaxYear}
}

// Income builds the validated income heads.
func (c *TaxCase) Income() (domain.IncomeSet, error) {
	set := domain.IncomeSet{Perquisites: c.Perquisites}
	if c.Salary != nil {
		s, err := c.Salary.build()
		if err != nil {
			return set, fmt.Errorf("salary: %w", err)
		}
		set.Salary = &s
	}
	if c.HouseProperty != nil {
		h, err := domain.NewHousePropertyIncome(*c.HouseProperty)
		if err != nil {
			return set, fmt.Errorf("house property: %w", err)
		}
		set.HouseProperty = &h
	}
	for i, d := range c.CapitalGains {
		cg, err := domain.NewCapitalGainsIncome(d)
		if err != nil {
			return set, fmt.Errorf("capital gain %d: %w", i, err)
		}
		set.CapitalGains = append(set.CapitalGains, cg)
	}
	if c.Retirement != nil {
		r, err := domain.NewRetirementBenefits(*c.Retirement)
		if err != nil {
			return set, fmt.Errorf("retirement: %w", err)
		}
		set.Retirement = &r
	}
	if c.OtherIncome != nil {
		o, err := domain.NewOtherIncome(*c.OtherIncome)
		if err != nil {
			return set, fmt.Errorf("other income: %w", err)
		}
		set.Other = &o
	}
	return set, nil
}

func (c *TaxCase) DeductionList() calculation.DeductionList {
	return calculation.DeductionList{Currency: money.DefaultCurrency, Items: c.Deductions}
}

// TaxInput builds the engine input for the case's own regime.
func (c *TaxCase) TaxInput() (calculation.TaxInput, error) {
	income, err := c.Income()
	if err != nil {
		return calculation.TaxInput{}, err
	}
	return calculation.TaxInput{
		TaxYear:    c.TaxYear,
		Regime:     c.Regime,
		Income:     income,
		Deductions: c.DeductionList(),
	}, nil
}

// Record builds a draft taxation record carrying every income head.
func (c *TaxCase) Record() (*domain.TaxationRecord, error) {
	income, err := c.Income()
	if err != nil {
		return nil, err
	}
	rec, err := domain.NewTaxationRecord(c.Key(), c.Regime)
	if err != nil {
		return nil, err
	}
	if err := rec.ReplaceIncome(income); err != nil {
		return nil, err
	}
	return rec, nil
}

// PayrollEntry is one employee in a monthly payroll batch.
type PayrollEntry struct {
	EmployeeID        string                       `yaml:"employee_id"`
	Regime            domain.Regime                `yaml:"regime"`
	Salary            SalaryInput                  `yaml:"salary"`
	Perquisites       money.Money                  `yaml:"perquisites"`
	PayrollDeductions money.Money                  `yaml:"payroll_deductions"`
	Retirement        *domain.RetirementDetails    `yaml:"retirement,omitempty"`
	WorkingDays       int                          `yaml:"working_days"`
	LWPDays           int                          `yaml:"lwp_days"`
	Deductions        []calculation.DeductionEntry `yaml:"deductions,omitempty"`
}

// PayrollBatch is one organisation's payroll for one calendar month.
type PayrollBatch struct {
	OrganisationID string         `yaml:"organisation_id"`
	Year           int            `yaml:"year"`
	Month          int            `yaml:"month"`
	Employees      []PayrollEntry `yaml:"employees"`
}

// Items builds the monthly salaries for a payroll run.
func (b *PayrollBatch) Items() ([]calculation.PayrollItem, error) {
	items := make([]calculation.PayrollItem, 0, len(b.Employees))
	for i, e := range b.Employees {
		s, err := e.Salary.build()
		if err != nil {
			return nil, fmt.Errorf("employee %d (%s): %w", i, e.EmployeeID, err)
		}
		in := domain.MonthlySalaryInput{
			Key: domain.PayrollKey{
				EmployeeID:     e.EmployeeID,
				OrganisationID: b.OrganisationID,
				Year:           b.Year,
				Month:          time.Month(b.Month),
			},
			Regime:              e.Regime,
			Salary:              s,
			Perquisites:         e.Perquisites,
			PayrollDeductions:   e.PayrollDeductions,
			WorkingDaysInPeriod: e.WorkingDays,
			LWPDays:             e.LWPDays,
		}
		if e.Retirement != nil {
			r, err := domain.NewRetirementBenefits(*e.Retirement)
			if err != nil {
				return nil, fmt.Errorf("employee %d (%s): %w", i, e.EmployeeID, err)
			}
			in.Retirement = &r
		}
		ms, err := domain.NewMonthlySalary(in)
		if err != nil {
			return nil, fmt.Errorf("employee %d (%s): %w", i, e.EmployeeID, err)
		}
		items = append(items, calculation.PayrollItem{
			Salary:     ms,
			Deductions: calculation.DeductionList{Currency: s.Currency(), Items: e.Deductions},
		})
	}
	return items, nil
}

// InputParser handles parsing of input files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

func readYAML(filename string, out any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// LoadTaxCase loads and validates a tax case from a YAML file
func (ip *InputParser) LoadTaxCase(filename string) (*TaxCase, error) {
	var c TaxCase
	if err := readYAML(filename, &c); err != nil {
		return nil, err
	}
	if err := ip.ValidateTaxCase(&c); err != nil {
		return nil, fmt.Errorf("tax case validation failed: %w", err)
	}
	return &c, nil
}

// LoadPayrollBatch loads and validates a monthly payroll batch from a YAML file
func (ip *InputParser) LoadPayrollBatch(filename string) (*PayrollBatch, error) {
	var b PayrollBatch
	if err := readYAML(filename, &b); err != nil {
		return nil, err
	}
	if err := ip.ValidatePayrollBatch(&b); err != nil {
		return nil, fmt.Errorf("payroll batch validation failed: %w", err)
	}
	return &b, nil
}

// LoadRuleBook loads a statutory rule book from a YAML file
func (ip *InputParser) LoadRuleBook(filename string) (*domain.RuleBook, error) {
	var rb domain.RuleBook
	if err := readYAML(filename, &rb); err != nil {
		return nil, err
	}
	if err := rb.Validate(); err != nil {
		return nil, fmt.Errorf("rule book validation failed: %w", err)
	}
	return &rb, nil
}

func writeYAML(filename, what string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", what, err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}

// SaveRuleBook writes a rule book as YAML
func (ip *InputParser) SaveRuleBook(rb *domain.RuleBook, filename string) error {
	return writeYAML(filename, "rule book", rb)
}

// SaveTaxCase writes a tax case as YAML
func (ip *InputParser) SaveTaxCase(c *TaxCase, filename string) error {
	return writeYAML(filename, "tax case", c)
}

// ValidateTaxCase validates identity fields and builds every income head once
func (ip *InputParser) ValidateTaxCase(c *TaxCase) error {
	if strings.TrimSpace(c.EmployeeID) == "" {
		return fmt.Errorf("employee_id is required")
	}
	if strings.TrimSpace(c.OrganisationID) == "" {
		return fmt.Errorf("organisation_id is required")
	}
	if c.TaxYear.IsZero() {
		return fmt.Errorf("tax_year is required")
	}
	if c.Regime == "" {
		c.Regime = domain.RegimeNew
	}
	if !c.Regime.Valid() {
		return fmt.Errorf("regime must be 'old' or 'new', got %q", c.Regime)
	}
	if err := ip.validateDeductions(c.Deductions); err != nil {
		return err
	}
	if _, err := c.Income(); err != nil {
		return err
	}
	return nil
}

// ValidatePayrollBatch validates the batch header and each entry
func (ip *InputParser) ValidatePayrollBatch(b *PayrollBatch) error {
	if strings.TrimSpace(b.OrganisationID) == "" {
		return fmt.Errorf("organisation_id is required")
	}
	if b.Month < 1 || b.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", b.Month)
	}
	if len(b.Employees) == 0 {
		return fmt.Errorf("no employees provided")
	}
	seen := make(map[string]bool, len(b.Employees))
	for i := range b.Employees {
		e := &b.Employees[i]
		if strings.TrimSpace(e.EmployeeID) == "" {
			return fmt.Errorf("employee %d: employee_id is required", i)
		}
		if seen[e.EmployeeID] {
			return fmt.Errorf("employee %s appears more than once", e.EmployeeID)
		}
		seen[e.EmployeeID] = true
		if e.Regime == "" {
			e.Regime = domain.RegimeNew
		}
		if err := ip.validateDeductions(e.Deductions); err != nil {
			return fmt.Errorf("employee %s: %w", e.EmployeeID, err)
		}
	}
	if _, err := b.Items(); err != nil {
		return err
	}
	return nil
}

func (ip *InputParser) validateDeductions(entries []calculation.DeductionEntry) error {
	for i, d := range entries {
		if strings.TrimSpace(d.Section) == "" {
			return fmt.Errorf("deduction %d: section is required", i)
		}
		for _, r := range d.Regimes {
			if !r.Valid() {
				return fmt.Errorf("deduction %s: unknown regime %q", d.Section, r)
			}
		}
	}
	return nil
}

// CreateExampleTaxCase creates an example tax case for the given year
func (ip *InputParser) CreateExampleTaxCase(year domain.TaxYear) *TaxCase {
	return &TaxCase{
		EmployeeID:     "EMP-001",
		OrganisationID: "ACME",
		TaxYear:        year,
		Regime:         domain.RegimeNew,
		Salary: &SalaryInput{
			SalaryComponents: domain.SalaryComponents{
				Basic:            money.Rupees(900000),
				HRA:              money.Rupees(360000),
				SpecialAllowance: money.Rupees(240000),
				Bonus:            money.Rupees(100000),
			},
			Exemptions: domain.SalaryExemptionInputs{
				RentPaid: money.Rupees(300000),
				Metro:    true,
			},
		},
		OtherIncome: &domain.OtherIncomeSources{
			SavingsInterest: money.Rupees(8000),
			DepositInterest: money.Rupees(25000),
		},
		Deductions: []calculation.DeductionEntry{
			{Section: "80C", Description: "EPF and PPF", Amount: money.Rupees(150000), Cap: money.Rupees(150000)},
			{Section: "80D", Description: "Health insurance", Amount: money.Rupees(25000), Cap: money.Rupees(25000)},
			{Section: "80CCD(2)", Description: "Employer NPS", Amount: money.Rupees(50000),
				Regimes: []domain.Regime{domain.RegimeOld, domain.RegimeNew}},
		},
		CapitalGains: []domain.CapitalGainsDetails{{
			Description:   "Index fund units",
			AssetType:     domain.AssetEquity,
			PurchaseDate:  dateIn(year.Prev().Prev(), time.June, 1),
			SaleDate:      dateIn(year, time.September, 1),
			PurchasePrice: money.Rupees(200000),
			SalePrice:     money.Rupees(340000),
		}},
		HouseProperty: &domain.HousePropertyDetails{
			Type:           domain.SelfOccupied,
			InterestOnLoan: money.Rupees(180000),
			Loan: domain.LoanDetails{
				Lender:       "Example Bank",
				Principal:    money.Rupees(2500000),
				InterestRate: decimal.NewFromFloat(8.5),
			},
		},
	}
}
