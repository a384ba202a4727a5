package output

import (
	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// Analysis holds the headline ratios of one computation.
type Analysis struct {
	EffectiveRate decimal.Decimal
	MonthlyTax    money.Money
}

// Analyze derives the effective rate (tax over total income) and the
// monthly share of the tax.
func Analyze(c domain.TaxComputation) Analysis {
	a := Analysis{EffectiveRate: decimal.Zero, MonthlyTax: money.Zero(c.TotalTax.Currency())}
	if c.TotalIncome.IsPositive() {
		a.EffectiveRate = c.TotalTax.Amount().Div(c.TotalIncome.Amount()).Mul(decimalHundred).Round(2)
	}
	if m, err := c.TotalTax.Div(decimal.NewFromInt(12)); err == nil {
		a.MonthlyTax = m
	}
	return a
}

// Recommendation summarises a regime comparison.
type Recommendation struct {
	Regime         domain.Regime
	Savings        money.Money
	SavingsPercent decimal.Decimal
}

// AnalyzeComparison expresses the savings as a share of the dearer regime's tax.
func AnalyzeComparison(cmp domain.RegimeComparison) Recommendation {
	rec := Recommendation{Regime: cmp.Recommended, Savings: cmp.Savings, SavingsPercent: decimal.Zero}
	higher := cmp.Old.TotalTax
	if cmp.Recommended == domain.RegimeOld {
		higher = cmp.New.TotalTax
	}
	if higher.IsPositive() {
		rec.SavingsPercent = cmp.Savings.Amount().Div(higher.Amount()).Mul(decimalHundred).Round(2)
	}
	return rec
}
