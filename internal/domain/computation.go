package domain

import (
	"time"

	"github.com/incometax/taxcalc/pkg/money"
)

// TaxComputation is the full breakdown of one year's liability under one regime.
type TaxComputation struct {
	TaxYear TaxYear `json:"tax_year"`
	Regime  Regime  `json:"regime"`

	GrossSalary      money.Money `json:"gross_salary"`
	SalaryExemptions money.Money `json:"salary_exemptions"`
	TaxableSalary    money.Money `json:"taxable_salary"`
	Perquisites      money.Money `json:"perquisites"`

	HousePropertyIncome     money.Money `json:"house_property_income"`
	HousePropertyLoss       money.Money `json:"house_property_loss"`
	HousePropertyLossSetOff money.Money `json:"house_property_loss_set_off"`

	OtherIncome         money.Money `json:"other_income"`
	CasualIncome        money.Money `json:"casual_income"`
	CapitalGainsSlab    money.Money `json:"capital_gains_slab"`
	CapitalGainsSpecial money.Money `json:"capital_gains_special"`
	RetirementTaxable   money.Money `json:"retirement_taxable"`
	GrossTotalIncome    money.Money `json:"gross_total_income"`
	Deductions          money.Money `json:"deductions"`
	TaxableIncome       money.Money `json:"taxable_income"`
	TotalIncome         money.Money `json:"total_income"`
	SlabTax             money.Money `json:"slab_tax"`
	Rebate              money.Money `json:"rebate"`
	SpecialRateTax      money.Money `json:"special_rate_tax"`
	TaxBeforeSurcharge  money.Money `json:"tax_before_surcharge"`
	Surcharge           money.Money `json:"surcharge"`
	Cess                money.Money `json:"cess"`
	TotalTax            money.Money `json:"total_tax"`
	ComputedAt          time.Time   `json:"computed_at"`
}

// RegimeComparison holds both computations and the regime with the lower tax.
type RegimeComparison struct {
	Old         TaxComputation `json:"old"`
	New         TaxComputation `json:"new"`
	Recommended Regime         `json:"recommended"`
	Savings     money.Money    `json:"savings"`
}
