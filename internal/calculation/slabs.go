package calculation

import (
	"fmt"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

// SLAB TAX ASSUMPTIONS:
//
// 1. Slab tables, rebates, surcharge bands and cess come from the RuleBook for
//    the tax year; nothing is hard-coded here.
//
// 2. Rebate is all-or-nothing: full rebate (capped at the tax) when total income
//    is at or below the limit, none above it. Marginal relief is not applied.
//
// 3. Surcharge uses the single highest band exceeded by total income, applied
//    to the whole tax. Marginal relief at band edges is not applied.

// SlabTable computes slab tax and the charges layered on top of it.
type SlabTable interface {
	TaxOnSlabIncome(income money.Money, regime domain.Regime, year domain.TaxYear) (money.Money, error)
	Rebate(totalIncome, tax money.Money, regime domain.Regime, year domain.TaxYear) (money.Money, error)
	Surcharge(tax, totalIncome money.Money, regime domain.Regime, year domain.TaxYear) (money.Money, error)
	Cess(tax money.Money, year domain.TaxYear) (money.Money, error)
}

// RuleBookSlabs is the SlabTable backed by a RuleBook.
type RuleBookSlabs struct {
	Rules *domain.RuleBook
}

var _ SlabTable = RuleBookSlabs{}

func NewRuleBookSlabs(rules *domain.RuleBook) RuleBookSlabs {
	return RuleBookSlabs{Rules: rules}
}

func (s RuleBookSlabs) regime(regime domain.Regime, year domain.TaxYear) (domain.RegimeRules, error) {
	y, err := s.Rules.ForYear(year)
	if err != nil {
		return domain.RegimeRules{}, err
	}
	return y.ForRegime(regime)
}

// TaxOnSlabIncome walks the brackets; each bracket taxes the slice of income
// above its lower bound and up to its upper bound.
func (s RuleBookSlabs) TaxOnSlabIncome(income money.Money, regime domain.Regime, year domain.TaxYear) (money.Money, error) {
	rr, err := s.regime(regime, year)
	if err != nil {
		return money.Money{}, err
	}
	amount := income.Amount()
	total := decimal.Zero
	for _, bracket := range rr.Slabs {
		lower := bracket.From.Amount()
		if amount.LessThanOrEqual(lower) {
			break
		}
		upper := amount
		if !bracket.UpTo.IsZero() {
			upper = decimal.Min(amount, bracket.UpTo.Amount())
		}
		inBracket := upper.Sub(lower)
		if inBracket.GreaterThan(decimal.Zero) {
			total = total.Add(inBracket.Mul(bracket.Rate).Div(decimal.NewFromInt(100)))
		}
	}
	tax, err := money.New(total, income.Currency())
	if err != nil {
		return money.Money{}, fmt.Errorf("slab tax: %w", err)
	}
	return tax, nil
}

func (s RuleBookSlabs) Rebate(totalIncome, tax money.Money, regime domain.Regime, year domain.TaxYear) (money.Money, error) {
	rr, err := s.regime(regime, year)
	if err != nil {
		return money.Money{}, err
	}
	above, err := totalIncome.GreaterThan(rr.Rebate.IncomeLimit)
	if err != nil {
		return money.Money{}, err
	}
	if above || rr.Rebate.MaxRebate.IsZero() {
		return money.Zero(tax.Currency()), nil
	}
	return money.Min(tax, rr.Rebate.MaxRebate)
}

func (s RuleBookSlabs) Surcharge(tax, totalIncome money.Money, regime domain.Regime, year domain.TaxYear) (money.Money, error) {
	rr, err := s.regime(regime, year)
	if err != nil {
		return money.Money{}, err
	}
	rate := decimal.Zero
	for _, band := range rr.Surcharge {
		above, err := totalIncome.GreaterThan(band.Above)
		if err != nil {
			return money.Money{}, err
		}
		if above && band.Rate.GreaterThan(rate) {
			rate = band.Rate
		}
	}
	return tax.Percentage(rate)
}

func (s RuleBookSlabs) Cess(tax money.Money, year domain.TaxYear) (money.Money, error) {
	y, err := s.Rules.ForYear(year)
	if err != nil {
		return money.Money{}, err
	}
	return tax.Percentage(y.CessRate)
}
