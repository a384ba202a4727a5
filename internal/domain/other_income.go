package domain

import (
	"github.com/incometax/taxcalc/pkg/money"
)

// OtherIncomeSources is a flat set of non-salary income heads for one year.
type OtherIncomeSources struct {
	SavingsInterest         money.Money `yaml:"savings_interest" json:"savings_interest"`
	DepositInterest         money.Money `yaml:"deposit_interest" json:"deposit_interest"`
	OtherInterest           money.Money `yaml:"other_interest" json:"other_interest"`
	Dividends               money.Money `yaml:"dividends" json:"dividends"`
	RentalIncome            money.Money `yaml:"rental_income" json:"rental_income"`
	BusinessIncome          money.Money `yaml:"business_income" json:"business_income"`
	ProfessionalIncome      money.Money `yaml:"professional_income" json:"professional_income"`
	CapitalGainsPassThrough money.Money `yaml:"capital_gains_pass_through" json:"capital_gains_pass_through"`
	SpeculativeIncome       money.Money `yaml:"speculative_income" json:"speculative_income"`
	CasualWinnings          money.Money `yaml:"casual_winnings" json:"casual_winnings"`
	AgriculturalIncome      money.Money `yaml:"agricultural_income" json:"agricultural_income"`
	TaxFreeInterest         money.Money `yaml:"tax_free_interest" json:"tax_free_interest"`
}

// OtherIncome is an immutable, validated OtherIncomeSources.
type OtherIncome struct {
	s OtherIncomeSources
}

func NewOtherIncome(s OtherIncomeSources) (OtherIncome, error) {
	if err := alignCurrency("other_income", s.SavingsInterest.Currency(),
		&s.SavingsInterest, &s.DepositInterest, &s.OtherInterest, &s.Dividends,
		&s.RentalIncome, &s.BusinessIncome, &s.ProfessionalIncome, &s.CapitalGainsPassThrough,
		&s.SpeculativeIncome, &s.CasualWinnings, &s.AgriculturalIncome, &s.TaxFreeInterest); err != nil {
		return OtherIncome{}, err
	}
	return OtherIncome{s: s}, nil
}

func (o OtherIncome) Sources() OtherIncomeSources { return o.s }
func (o OtherIncome) Currency() string           { return o.s.SavingsInterest.Currency() }

func (o OtherIncome) TotalInterest() (money.Money, error) {
	return money.Sum(o.Currency(), o.s.SavingsInterest, o.s.DepositInterest, o.s.OtherInterest)
}

func (o OtherIncome) TotalBusiness() (money.Money, error) {
	return money.Sum(o.Currency(), o.s.BusinessIncome, o.s.ProfessionalIncome, o.s.SpeculativeIncome)
}

// SlabIncome is the portion taxed at slab rates.
func (o OtherIncome) SlabIncome() (money.Money, error) {
	interest, err := o.TotalInterest()
	if err != nil {
		return money.Money{}, err
	}
	business, err := o.TotalBusiness()
	if err != nil {
		return money.Money{}, err
	}
	return money.Sum(o.Currency(), interest, business, o.s.Dividends, o.s.RentalIncome, o.s.CapitalGainsPassThrough)
}

// ExemptTotal is income that is not taxed at all.
func (o OtherIncome) ExemptTotal() (money.Money, error) {
	return money.Sum(o.Currency(), o.s.AgriculturalIncome, o.s.TaxFreeInterest)
}

// FlatRateTax taxes casual winnings at the flat rate with no slab benefit.
func (o OtherIncome) FlatRateTax(l StatutoryLimits) (money.Money, error) {
	return o.s.CasualWinnings.Percentage(l.CasualIncomeRate)
}

func (o OtherIncome) CasualIncome() money.Money { return o.s.CasualWinnings }

// Total is every head including exempt and casual income.
func (o OtherIncome) Total() (money.Money, error) {
	slab, err := o.SlabIncome()
	if err != nil {
		return money.Money{}, err
	}
	exempt, err := o.ExemptTotal()
	if err != nil {
		return money.Money{}, err
	}
	return money.Sum(o.Currency(), slab, exempt, o.s.CasualWinnings)
}
