package domain

import (
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

// RetirementDetails are the benefits received on leaving service.
type RetirementDetails struct {
	GratuityAmount     money.Money `yaml:"gratuity_amount" json:"gratuity_amount"`
	YearsOfService     int         `yaml:"years_of_service" json:"years_of_service"`
	GovernmentEmployee bool        `yaml:"government_employee" json:"government_employee"`
	LastDrawnSalary    money.Money `yaml:"last_drawn_salary" json:"last_drawn_salary"`

	LeaveEncashmentAmount money.Money `yaml:"leave_encashment_amount" json:"leave_encashment_amount"`
	LeaveBalanceDays      int         `yaml:"leave_balance_days" json:"leave_balance_days"`

	PensionAmount         money.Money     `yaml:"pension_amount" json:"pension_amount"`
	PensionCommuted       bool            `yaml:"pension_commuted" json:"pension_commuted"`
	CommutedPensionAmount money.Money     `yaml:"commuted_pension_amount" json:"commuted_pension_amount"`
	CommutationPercentage decimal.Decimal `yaml:"commutation_percentage" json:"commutation_percentage"`

	VRSCompensation money.Money `yaml:"vrs_compensation" json:"vrs_compensation"`
	OtherBenefits   money.Money `yaml:"other_benefits" json:"other_benefits"`
}

// RetirementExemptions is the per-benefit breakdown of exempt amounts.
type RetirementExemptions struct {
	Gratuity        money.Money `json:"gratuity"`
	LeaveEncashment money.Money `json:"leave_encashment"`
	CommutedPension money.Money `json:"commuted_pension"`
	VRS             money.Money `json:"vrs"`
}

func (e RetirementExemptions) Total(currency string) (money.Money, error) {
	return money.Sum(currency, e.Gratuity, e.LeaveEncashment, e.CommutedPension, e.VRS)
}

// RetirementBenefits is an immutable, validated set of retirement benefits.
type RetirementBenefits struct {
	d RetirementDetails
}

func NewRetirementBenefits(d RetirementDetails) (RetirementBenefits, error) {
	if d.YearsOfService < 0 {
		return RetirementBenefits{}, invalid("retirement.years_of_service", "cannot be negative")
	}
	if d.LeaveBalanceDays < 0 {
		return RetirementBenefits{}, invalid("retirement.leave_balance_days", "cannot be negative")
	}
	if d.CommutationPercentage.IsNegative() || d.CommutationPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return RetirementBenefits{}, invalid("retirement.commutation_percentage", "must be between 0 and 100")
	}
	if !d.PensionCommuted && d.CommutedPensionAmount.IsPositive() {
		return RetirementBenefits{}, invalid("retirement.commuted_pension_amount", "set but pension_commuted is false")
	}
	cur := d.GratuityAmount.Currency()
	if err := alignCurrency("retirement", cur,
		&d.GratuityAmount, &d.LastDrawnSalary, &d.LeaveEncashmentAmount, &d.PensionAmount,
		&d.CommutedPensionAmount, &d.VRSCompensation, &d.OtherBenefits); err != nil {
		return RetirementBenefits{}, err
	}
	return RetirementBenefits{d: d}, nil
}

func (r RetirementBenefits) Details() RetirementDetails { return r.d }
func (r RetirementBenefits) Currency() string          { return r.d.GratuityAmount.Currency() }

func (r RetirementBenefits) GratuityExemption(l StatutoryLimits) (money.Money, error) {
	return gratuityExemption(r.d.GratuityAmount, r.d.LastDrawnSalary, r.d.YearsOfService, r.d.GovernmentEmployee, l)
}

func (r RetirementBenefits) LeaveEncashmentExemption(l StatutoryLimits) (money.Money, error) {
	return leaveEncashmentExemption(r.d.LeaveEncashmentAmount, r.d.LastDrawnSalary,
		r.d.LeaveBalanceDays, r.d.YearsOfService, r.d.GovernmentEmployee, l)
}

// CommutedPensionExemption exempts a fixed fraction of the full commuted value,
// never more than was received. Government pensioners are fully exempt.
func (r RetirementBenefits) CommutedPensionExemption(l StatutoryLimits) (money.Money, error) {
	received := r.d.CommutedPensionAmount
	if !r.d.PensionCommuted || received.IsZero() {
		return money.Zero(r.Currency()), nil
	}
	if r.d.GovernmentEmployee {
		return received, nil
	}
	full := received
	if r.d.CommutationPercentage.IsPositive() {
		scaled, err := received.Mul(decimal.NewFromInt(100))
		if err != nil {
			return money.Money{}, err
		}
		if full, err = scaled.Div(r.d.CommutationPercentage); err != nil {
			return money.Money{}, err
		}
	}
	exempt, err := full.Div(l.CommutedPensionExemptDivisor)
	if err != nil {
		return money.Money{}, err
	}
	return money.Min(exempt, received)
}

func (r RetirementBenefits) VRSExemption(l StatutoryLimits) (money.Money, error) {
	return money.Min(r.d.VRSCompensation, l.VRSCap)
}

func (r RetirementBenefits) Exemptions(l StatutoryLimits) (RetirementExemptions, error) {
	var (
		ex  RetirementExemptions
		err error
	)
	if ex.Gratuity, err = r.GratuityExemption(l); err != nil {
		return ex, err
	}
	if ex.LeaveEncashment, err = r.LeaveEncashmentExemption(l); err != nil {
		return ex, err
	}
	if ex.CommutedPension, err = r.CommutedPensionExemption(l); err != nil {
		return ex, err
	}
	ex.VRS, err = r.VRSExemption(l)
	return ex, err
}

// TotalBenefits sums every benefit received, including uncommuted pension and
// other benefits.
func (r RetirementBenefits) TotalBenefits() (money.Money, error) {
	return money.Sum(r.Currency(), r.d.GratuityAmount, r.d.LeaveEncashmentAmount,
		r.d.PensionAmount, r.d.CommutedPensionAmount, r.d.VRSCompensation, r.d.OtherBenefits)
}

// TaxableIncome is total benefits less exemptions. Uncommuted pension and other
// benefits carry no exemption, so each rupee of them is taxable.
func (r RetirementBenefits) TaxableIncome(l StatutoryLimits) (money.Money, error) {
	total, err := r.TotalBenefits()
	if err != nil {
		return money.Money{}, err
	}
	ex, err := r.Exemptions(l)
	if err != nil {
		return money.Money{}, err
	}
	exempt, err := ex.Total(r.Currency())
	if err != nil {
		return money.Money{}, err
	}
	return total.Sub(exempt)
}
