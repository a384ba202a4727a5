package domain

import (
	"github.com/incometax/taxcalc/pkg/dateutil"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

// PropertyType decides how the annual value of a house is determined.
type PropertyType string

const (
	SelfOccupied PropertyType = "self_occupied"
	LetOut       PropertyType = "let_out"
	DeemedLetOut PropertyType = "deemed_let_out"
)

func (p PropertyType) Valid() bool {
	return p == SelfOccupied || p == LetOut || p == DeemedLetOut
}

// ConstructionDetails dates the construction period for pre-construction interest.
type ConstructionDetails struct {
	StartedOn   dateutil.Date `yaml:"started_on" json:"started_on"`
	CompletedOn dateutil.Date `yaml:"completed_on" json:"completed_on"`
}

// LoanDetails describe the housing loan behind the interest claim.
type LoanDetails struct {
	Lender       string          `yaml:"lender" json:"lender"`
	SanctionedOn dateutil.Date   `yaml:"sanctioned_on" json:"sanctioned_on"`
	Principal    money.Money     `yaml:"principal" json:"principal"`
	InterestRate decimal.Decimal `yaml:"interest_rate" json:"interest_rate"`
}

// HousePropertyDetails are the inputs for one house.
type HousePropertyDetails struct {
	Type                    PropertyType        `yaml:"type" json:"type"`
	Address                 string              `yaml:"address,omitempty" json:"address,omitempty"`
	MunicipalValue          money.Money         `yaml:"municipal_value" json:"municipal_value"`
	FairRentalValue         money.Money         `yaml:"fair_rental_value" json:"fair_rental_value"`
	StandardRent            money.Money         `yaml:"standard_rent" json:"standard_rent"`
	ActualRent              money.Money         `yaml:"actual_rent" json:"actual_rent"`
	MunicipalTaxPaid        money.Money         `yaml:"municipal_tax_paid" json:"municipal_tax_paid"`
	InterestOnLoan          money.Money         `yaml:"interest_on_loan" json:"interest_on_loan"`
	PreConstructionInterest money.Money         `yaml:"pre_construction_interest" json:"pre_construction_interest"`
	OtherDeductions         money.Money         `yaml:"other_deductions" json:"other_deductions"`
	Construction            ConstructionDetails `yaml:"construction" json:"construction"`
	Loan                    LoanDetails         `yaml:"loan" json:"loan"`
}

// HousePropertyResult is the computed outcome for one year: either an income or a loss.
type HousePropertyResult struct {
	GrossAnnualValue  money.Money `json:"gross_annual_value"`
	NetAnnualValue    money.Money `json:"net_annual_value"`
	StandardDeduction money.Money `json:"standard_deduction"`
	InterestDeduction money.Money `json:"interest_deduction"`
	OtherDeductions   money.Money `json:"other_deductions"`
	Income            money.Money `json:"income"`
	Loss              money.Money `json:"loss"`
}

// HousePropertyIncome is an immutable, validated house property.
type HousePropertyIncome struct {
	d HousePropertyDetails
}

func NewHousePropertyIncome(d HousePropertyDetails) (HousePropertyIncome, error) {
	if !d.Type.Valid() {
		return HousePropertyIncome{}, invalid("house_property.type", "unknown property type %q", d.Type)
	}
	cur := d.MunicipalValue.Currency()
	if err := alignCurrency("house_property", cur,
		&d.MunicipalValue, &d.FairRentalValue, &d.StandardRent, &d.ActualRent,
		&d.MunicipalTaxPaid, &d.InterestOnLoan, &d.PreConstructionInterest,
		&d.OtherDeductions, &d.Loan.Principal); err != nil {
		return HousePropertyIncome{}, err
	}
	h := HousePropertyIncome{d: d}
	if d.Type != SelfOccupied {
		gav, err := h.GrossAnnualValue()
		if err != nil {
			return HousePropertyIncome{}, err
		}
		if gt, _ := d.MunicipalTaxPaid.GreaterThan(gav); gt {
			return HousePropertyIncome{}, invalid("house_property.municipal_tax_paid", "%s exceeds gross annual value %s", d.MunicipalTaxPaid, gav)
		}
	}
	if d.PreConstructionInterest.IsPositive() && d.Construction.CompletedOn.IsZero() {
		return HousePropertyIncome{}, invalid("house_property.construction.completed_on", "required when pre-construction interest is claimed")
	}
	if !d.Construction.StartedOn.IsZero() && !d.Construction.CompletedOn.IsZero() &&
		d.Construction.CompletedOn.Before(d.Construction.StartedOn.Time) {
		return HousePropertyIncome{}, invalid("house_property.construction", "completion precedes start")
	}
	return h, nil
}

func (h HousePropertyIncome) Details() HousePropertyDetails { return h.d }
func (h HousePropertyIncome) Type() PropertyType           { return h.d.Type }
func (h HousePropertyIncome) Currency() string             { return h.d.MunicipalValue.Currency() }

// GrossAnnualValue is zero for a self-occupied house. A let-out house takes the
// highest of municipal value, fair rent, standard rent and actual rent; deemed-let
// property has no actual rent.
func (h HousePropertyIncome) GrossAnnualValue() (money.Money, error) {
	if h.d.Type == SelfOccupied {
		return money.Zero(h.Currency()), nil
	}
	if h.d.Type == DeemedLetOut {
		return money.Max(h.d.MunicipalValue, h.d.FairRentalValue, h.d.StandardRent)
	}
	return money.Max(h.d.MunicipalValue, h.d.FairRentalValue, h.d.StandardRent, h.d.ActualRent)
}

// NetAnnualValue is gross annual value less municipal tax paid.
func (h HousePropertyIncome) NetAnnualValue() (money.Money, error) {
	gav, err := h.GrossAnnualValue()
	if err != nil {
		return money.Money{}, err
	}
	if h.d.Type == SelfOccupied {
		return gav, nil
	}
	return gav.Sub(h.d.MunicipalTaxPaid)
}

func (h HousePropertyIncome) StandardDeduction(l StatutoryLimits) (money.Money, error) {
	nav, err := h.NetAnnualValue()
	if err != nil {
		return money.Money{}, err
	}
	return nav.Percentage(l.HouseStandardDeductionPercent)
}

// PreConstructionInstallment is the share of pre-construction interest claimable
// in year: equal parts over the configured number of years, starting with the
// year construction completed.
func (h HousePropertyIncome) PreConstructionInstallment(year TaxYear, l StatutoryLimits) (money.Money, error) {
	zero := money.Zero(h.Currency())
	if h.d.PreConstructionInterest.IsZero() || h.d.Construction.CompletedOn.IsZero() {
		return zero, nil
	}
	n := year.StartYear() - TaxYearOf(h.d.Construction.CompletedOn.Time).StartYear()
	if n < 0 || n >= l.PreConstructionInstallments {
		return zero, nil
	}
	return h.d.PreConstructionInterest.Div(decimal.NewFromInt(int64(l.PreConstructionInstallments)))
}

// InterestDeduction caps interest on a self-occupied house and disallows it
// entirely under the new regime. Let-out interest is uncapped.
func (h HousePropertyIncome) InterestDeduction(year TaxYear, regime Regime, l StatutoryLimits) (money.Money, error) {
	if h.d.Type == SelfOccupied && regime == RegimeNew {
		return money.Zero(h.Currency()), nil
	}
	installment, err := h.PreConstructionInstallment(year, l)
	if err != nil {
		return money.Money{}, err
	}
	total, err := h.d.InterestOnLoan.Add(installment)
	if err != nil {
		return money.Money{}, err
	}
	if h.d.Type == SelfOccupied {
		return money.Min(total, l.SelfOccupiedInterestCap)
	}
	return total, nil
}

// Compute nets the annual value against all deductions for one year.
func (h HousePropertyIncome) Compute(year TaxYear, regime Regime, l StatutoryLimits) (HousePropertyResult, error) {
	var (
		res HousePropertyResult
		err error
	)
	if res.GrossAnnualValue, err = h.GrossAnnualValue(); err != nil {
		return res, err
	}
	if res.NetAnnualValue, err = h.NetAnnualValue(); err != nil {
		return res, err
	}
	if res.StandardDeduction, err = h.StandardDeduction(l); err != nil {
		return res, err
	}
	if res.InterestDeduction, err = h.InterestDeduction(year, regime, l); err != nil {
		return res, err
	}
	res.OtherDeductions = h.d.OtherDeductions
	debits, err := money.Sum(h.Currency(), res.StandardDeduction, res.InterestDeduction, res.OtherDeductions)
	if err != nil {
		return res, err
	}
	// At most one of Income and Loss is non-zero.
	if res.Income, err = res.NetAnnualValue.ExcessOver(debits); err != nil {
		return res, err
	}
	if res.Loss, err = debits.ExcessOver(res.NetAnnualValue); err != nil {
		return res, err
	}
	return res, nil
}
