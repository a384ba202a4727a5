package domain

import (
	"fmt"

	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

// SalaryComponents are the gross pay heads for one period (annual or monthly).
type SalaryComponents struct {
	Basic             money.Money `yaml:"basic" json:"basic"`
	DearnessAllowance money.Money `yaml:"dearness_allowance" json:"dearness_allowance"`
	HRA               money.Money `yaml:"hra" json:"hra"`
	SpecialAllowance  money.Money `yaml:"special_allowance" json:"special_allowance"`
	Conveyance        money.Money `yaml:"conveyance" json:"conveyance"`
	MedicalAllowance  money.Money `yaml:"medical_allowance" json:"medical_allowance"`
	OtherAllowances   money.Money `yaml:"other_allowances" json:"other_allowances"`
	Bonus             money.Money `yaml:"bonus" json:"bonus"`
	Commission        money.Money `yaml:"commission" json:"commission"`
	Overtime          money.Money `yaml:"overtime" json:"overtime"`
	Arrears           money.Money `yaml:"arrears" json:"arrears"`
	Gratuity          money.Money `yaml:"gratuity" json:"gratuity"`
	LeaveEncashment   money.Money `yaml:"leave_encashment" json:"leave_encashment"`
}

func (c *SalaryComponents) fields() []*money.Money {
	return []*money.Money{
		&c.Basic, &c.DearnessAllowance, &c.HRA, &c.SpecialAllowance,
		&c.Conveyance, &c.MedicalAllowance, &c.OtherAllowances,
		&c.Bonus, &c.Commission, &c.Overtime, &c.Arrears,
		&c.Gratuity, &c.LeaveEncashment,
	}
}

// fixed are the heads that accrue per working day and are prorated for leave without pay.
func (c *SalaryComponents) fixed() []*money.Money {
	return []*money.Money{
		&c.Basic, &c.DearnessAllowance, &c.HRA, &c.SpecialAllowance,
		&c.Conveyance, &c.MedicalAllowance, &c.OtherAllowances,
	}
}

// SalaryExemptionInputs carry the facts the exemption formulas need beyond pay heads.
type SalaryExemptionInputs struct {
	RentPaid           money.Money `yaml:"rent_paid" json:"rent_paid"`
	Metro              bool        `yaml:"metro" json:"metro"`
	YearsOfService     int         `yaml:"years_of_service" json:"years_of_service"`
	GovernmentEmployee bool        `yaml:"government_employee" json:"government_employee"`
	LastDrawnSalary    money.Money `yaml:"last_drawn_salary" json:"last_drawn_salary"`
	LeaveBalanceDays   int         `yaml:"leave_balance_days" json:"leave_balance_days"`
}

// SalaryExemptions is the per-head breakdown of exempt salary.
type SalaryExemptions struct {
	HRA             money.Money `json:"hra"`
	Conveyance      money.Money `json:"conveyance"`
	Medical         money.Money `json:"medical"`
	Gratuity        money.Money `json:"gratuity"`
	LeaveEncashment money.Money `json:"leave_encashment"`
}

func (e SalaryExemptions) Total(currency string) (money.Money, error) {
	return money.Sum(currency, e.HRA, e.Conveyance, e.Medical, e.Gratuity, e.LeaveEncashment)
}

// SalaryIncome is an immutable salary value. Exemptions are only populated by WithExemptions.
type SalaryIncome struct {
	components SalaryComponents
	inputs     SalaryExemptionInputs
	exemptions SalaryExemptions
	computed   bool
}

// NewSalaryIncome validates that every head shares one currency.
func NewSalaryIncome(c SalaryComponents, in SalaryExemptionInputs) (SalaryIncome, error) {
	cur := c.Basic.Currency()
	if err := alignCurrency("salary", cur, c.fields()...); err != nil {
		return SalaryIncome{}, err
	}
	if err := alignCurrency("salary.exemption_inputs", cur, &in.RentPaid, &in.LastDrawnSalary); err != nil {
		return SalaryIncome{}, err
	}
	if in.YearsOfService < 0 {
		return SalaryIncome{}, invalid("years_of_service", "cannot be negative")
	}
	if in.LeaveBalanceDays < 0 {
		return SalaryIncome{}, invalid("leave_balance_days", "cannot be negative")
	}
	return SalaryIncome{components: c, inputs: in, exemptions: zeroExemptions(cur)}, nil
}

func zeroExemptions(cur string) SalaryExemptions {
	z := money.Zero(cur)
	return SalaryExemptions{HRA: z, Conveyance: z, Medical: z, Gratuity: z, LeaveEncashment: z}
}

func (s SalaryIncome) Components() SalaryComponents        { return s.components }
func (s SalaryIncome) ExemptionInputs() SalaryExemptionInputs { return s.inputs }
func (s SalaryIncome) Exemptions() SalaryExemptions         { return s.exemptions }
func (s SalaryIncome) ExemptionsComputed() bool             { return s.computed }
func (s SalaryIncome) Currency() string                     { return s.components.Basic.Currency() }

// HRAExemption is the least of HRA received, rent paid over the basic-pay floor,
// and the metro/non-metro share of basic. No rent means no exemption.
func (s SalaryIncome) HRAExemption(l StatutoryLimits) (money.Money, error) {
	c := s.components
	if s.inputs.RentPaid.IsZero() || c.HRA.IsZero() {
		return money.Zero(s.Currency()), nil
	}
	floor, err := c.Basic.Percentage(l.HRARentBasicPercent)
	if err != nil {
		return money.Money{}, err
	}
	rentExcess, err := s.inputs.RentPaid.ExcessOver(floor)
	if err != nil {
		return money.Money{}, err
	}
	share := l.HRANonMetroPercent
	if s.inputs.Metro {
		share = l.HRAMetroPercent
	}
	basicShare, err := c.Basic.Percentage(share)
	if err != nil {
		return money.Money{}, err
	}
	return money.Min(c.HRA, rentExcess, basicShare)
}

func (s SalaryIncome) ConveyanceExemption(l StatutoryLimits) (money.Money, error) {
	return money.Min(s.components.Conveyance, l.ConveyanceAnnualCap)
}

func (s SalaryIncome) MedicalExemption(l StatutoryLimits) (money.Money, error) {
	return money.Min(s.components.MedicalAllowance, l.MedicalAnnualCap)
}

func (s SalaryIncome) GratuityExemption(l StatutoryLimits) (money.Money, error) {
	return gratuityExemption(s.components.Gratuity, s.inputs.LastDrawnSalary,
		s.inputs.YearsOfService, s.inputs.GovernmentEmployee, l)
}

func (s SalaryIncome) LeaveEncashmentExemption(l StatutoryLimits) (money.Money, error) {
	return leaveEncashmentExemption(s.components.LeaveEncashment, s.inputs.LastDrawnSalary,
		s.inputs.LeaveBalanceDays, s.inputs.YearsOfService, s.inputs.GovernmentEmployee, l)
}

// WithExemptions returns a copy carrying the exemptions computed under l.
func (s SalaryIncome) WithExemptions(l StatutoryLimits) (SalaryIncome, error) {
	var (
		ex  SalaryExemptions
		err error
	)
	if ex.HRA, err = s.HRAExemption(l); err != nil {
		return SalaryIncome{}, fmt.Errorf("hra exemption: %w", err)
	}
	if ex.Conveyance, err = s.ConveyanceExemption(l); err != nil {
		return SalaryIncome{}, fmt.Errorf("conveyance exemption: %w", err)
	}
	if ex.Medical, err = s.MedicalExemption(l); err != nil {
		return SalaryIncome{}, fmt.Errorf("medical exemption: %w", err)
	}
	if ex.Gratuity, err = s.GratuityExemption(l); err != nil {
		return SalaryIncome{}, fmt.Errorf("gratuity exemption: %w", err)
	}
	if ex.LeaveEncashment, err = s.LeaveEncashmentExemption(l); err != nil {
		return SalaryIncome{}, fmt.Errorf("leave encashment exemption: %w", err)
	}
	out := s
	out.exemptions = ex
	out.computed = true
	return out, nil
}

// GrossSalary sums every pay head.
func (s SalaryIncome) GrossSalary() (money.Money, error) {
	c := s.components
	items := make([]money.Money, 0, 13)
	for _, f := range c.fields() {
		items = append(items, *f)
	}
	return money.Sum(s.Currency(), items...)
}

func (s SalaryIncome) TotalExemptions() (money.Money, error) {
	return s.exemptions.Total(s.Currency())
}

// TaxableSalary is gross salary less computed exemptions.
func (s SalaryIncome) TaxableSalary() (money.Money, error) {
	gross, err := s.GrossSalary()
	if err != nil {
		return money.Money{}, err
	}
	exempt, err := s.TotalExemptions()
	if err != nil {
		return money.Money{}, err
	}
	return gross.Sub(exempt)
}

// Prorate scales the fixed heads by factor (0..1). Variable pay such as bonus
// or arrears is left untouched. The result needs its exemptions recomputed.
func (s SalaryIncome) Prorate(factor decimal.Decimal) (SalaryIncome, error) {
	if factor.IsNegative() || factor.GreaterThan(decimal.NewFromInt(1)) {
		return SalaryIncome{}, invalid("proration_factor", "%s is outside [0, 1]", factor)
	}
	out := SalaryIncome{components: s.components, inputs: s.inputs, exemptions: zeroExemptions(s.Currency())}
	for _, f := range out.components.fixed() {
		scaled, err := f.Mul(factor)
		if err != nil {
			return SalaryIncome{}, err
		}
		*f = scaled
	}
	return out, nil
}

// Annualize multiplies the recurring heads and the rent paid by periods, turning
// a monthly salary into its annual equivalent. One-off heads (bonus, commission,
// overtime, arrears, gratuity, leave encashment) are counted once.
func (s SalaryIncome) Annualize(periods int) (SalaryIncome, error) {
	if periods <= 0 {
		return SalaryIncome{}, invalid("periods", "must be positive")
	}
	n := decimal.NewFromInt(int64(periods))
	out := SalaryIncome{components: s.components, inputs: s.inputs, exemptions: zeroExemptions(s.Currency())}
	for _, f := range out.components.fixed() {
		scaled, err := f.Mul(n)
		if err != nil {
			return SalaryIncome{}, err
		}
		*f = scaled
	}
	rent, err := out.inputs.RentPaid.Mul(n)
	if err != nil {
		return SalaryIncome{}, err
	}
	out.inputs.RentPaid = rent
	return out, nil
}

// gratuityExemption is shared by salary and retirement benefits. Government
// employees are fully exempt regardless of service length.
func gratuityExemption(actual, lastDrawn money.Money, years int, govt bool, l StatutoryLimits) (money.Money, error) {
	if govt {
		return actual, nil
	}
	if years < l.MinServiceYears || actual.IsZero() {
		return money.Zero(actual.Currency()), nil
	}
	accrued, err := lastDrawn.Mul(decimal.NewFromInt(int64(years)).Mul(l.GratuityDaysPerYear))
	if err != nil {
		return money.Money{}, err
	}
	formula, err := accrued.Div(l.GratuityMonthDays)
	if err != nil {
		return money.Money{}, err
	}
	return money.Min(actual, formula, l.GratuityCap)
}

func leaveEncashmentExemption(actual, lastDrawn money.Money, leaveDays, years int, govt bool, l StatutoryLimits) (money.Money, error) {
	if govt {
		return actual, nil
	}
	if years < l.MinServiceYears || actual.IsZero() {
		return money.Zero(actual.Currency()), nil
	}
	accrued, err := lastDrawn.Mul(decimal.NewFromInt(int64(leaveDays)))
	if err != nil {
		return money.Money{}, err
	}
	formula, err := accrued.Div(l.LeaveMonthDays)
	if err != nil {
		return money.Money{}, err
	}
	return money.Min(actual, formula, l.LeaveEncashmentCap)
}
