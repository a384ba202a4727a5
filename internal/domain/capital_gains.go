package domain

import (
	"fmt"

	"github.com/incometax/taxcalc/pkg/dateutil"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

// CostIndex supplies the cost inflation index for a financial year.
type CostIndex interface {
	IndexFor(year TaxYear) (decimal.Decimal, error)
}

// CapitalGainsDetails describe one asset sale.
type CapitalGainsDetails struct {
	Description      string        `yaml:"description,omitempty" json:"description,omitempty"`
	AssetType        AssetType     `yaml:"asset_type" json:"asset_type"`
	PurchaseDate     dateutil.Date `yaml:"purchase_date" json:"purchase_date"`
	SaleDate         dateutil.Date `yaml:"sale_date" json:"sale_date"`
	PurchasePrice    money.Money   `yaml:"purchase_price" json:"purchase_price"`
	SalePrice        money.Money   `yaml:"sale_price" json:"sale_price"`
	TransferExpenses money.Money   `yaml:"transfer_expenses" json:"transfer_expenses"`
	ImprovementCost  money.Money   `yaml:"improvement_cost" json:"improvement_cost"`

	ListedSecurity      bool `yaml:"listed_security" json:"listed_security"`
	ResidentialProperty bool `yaml:"residential_property" json:"residential_property"`
	AgriculturalLand    bool `yaml:"agricultural_land" json:"agricultural_land"`
	BusinessAsset       bool `yaml:"business_asset" json:"business_asset"`
}

// ReinvestmentExemption is the reinvestment relief on a gain. Computed is false
// when the relief has not been evaluated; Amount is then zero.
type ReinvestmentExemption struct {
	Amount   money.Money `json:"amount"`
	Computed bool        `json:"computed"`
}

// CapitalGainsOutcome is the tax treatment of a single sale.
type CapitalGainsOutcome struct {
	LongTerm          bool            `json:"long_term"`
	HoldingYears      int             `json:"holding_years"`
	Gain              money.Money     `json:"gain"`
	Loss              money.Money     `json:"loss"`
	IndexedCost       money.Money     `json:"indexed_cost"`
	SlabIncome        money.Money     `json:"slab_income"`
	SpecialRateIncome money.Money     `json:"special_rate_income"`
	SpecialRate       decimal.Decimal `json:"special_rate"`
	SpecialRateTax    money.Money     `json:"special_rate_tax"`
}

// CapitalGainsIncome is an immutable, validated asset sale.
type CapitalGainsIncome struct {
	d CapitalGainsDetails
}

func NewCapitalGainsIncome(d CapitalGainsDetails) (CapitalGainsIncome, error) {
	if !d.AssetType.Valid() {
		return CapitalGainsIncome{}, invalid("capital_gains.asset_type", "unknown asset type %q", d.AssetType)
	}
	if d.PurchaseDate.IsZero() || d.SaleDate.IsZero() {
		return CapitalGainsIncome{}, invalid("capital_gains.dates", "purchase and sale dates are required")
	}
	if d.SaleDate.Before(d.PurchaseDate.Time) {
		return CapitalGainsIncome{}, invalid("capital_gains.sale_date", "%s precedes purchase on %s", d.SaleDate, d.PurchaseDate)
	}
	cur := d.SalePrice.Currency()
	if err := alignCurrency("capital_gains", cur,
		&d.PurchasePrice, &d.SalePrice, &d.TransferExpenses, &d.ImprovementCost); err != nil {
		return CapitalGainsIncome{}, err
	}
	if gt, _ := d.TransferExpenses.GreaterThan(d.SalePrice); gt {
		return CapitalGainsIncome{}, invalid("capital_gains.transfer_expenses", "exceed sale price")
	}
	return CapitalGainsIncome{d: d}, nil
}

func (c CapitalGainsIncome) Details() CapitalGainsDetails { return c.d }
func (c CapitalGainsIncome) Currency() string            { return c.d.SalePrice.Currency() }

// HoldingPeriodYears counts completed years between purchase and sale.
func (c CapitalGainsIncome) HoldingPeriodYears() int {
	return dateutil.CompletedYears(c.d.PurchaseDate.Time, c.d.SaleDate.Time)
}

func (c CapitalGainsIncome) IsLongTerm(l StatutoryLimits) bool {
	return c.HoldingPeriodYears() >= l.LongTermThreshold(c.d.AssetType)
}

// CostOfAcquisition is purchase price plus improvement cost.
func (c CapitalGainsIncome) CostOfAcquisition() (money.Money, error) {
	return c.d.PurchasePrice.Add(c.d.ImprovementCost)
}

// NetConsideration is sale price less transfer expenses.
func (c CapitalGainsIncome) NetConsideration() (money.Money, error) {
	return c.d.SalePrice.Sub(c.d.TransferExpenses)
}

// GainOrLoss returns the unindexed gain and loss; at most one is non-zero.
func (c CapitalGainsIncome) GainOrLoss() (gain, loss money.Money, err error) {
	net, err := c.NetConsideration()
	if err != nil {
		return gain, loss, err
	}
	cost, err := c.CostOfAcquisition()
	if err != nil {
		return gain, loss, err
	}
	if gain, err = net.ExcessOver(cost); err != nil {
		return gain, loss, err
	}
	loss, err = cost.ExcessOver(net)
	return gain, loss, err
}

// IndexedCostOfAcquisition scales cost by the ratio of sale-year to purchase-year
// index. Short-term assets are not indexed.
func (c CapitalGainsIncome) IndexedCostOfAcquisition(cii CostIndex, l StatutoryLimits) (money.Money, error) {
	cost, err := c.CostOfAcquisition()
	if err != nil {
		return money.Money{}, err
	}
	if !c.IsLongTerm(l) {
		return cost, nil
	}
	bought, err := cii.IndexFor(TaxYearOf(c.d.PurchaseDate.Time))
	if err != nil {
		return money.Money{}, err
	}
	sold, err := cii.IndexFor(TaxYearOf(c.d.SaleDate.Time))
	if err != nil {
		return money.Money{}, err
	}
	scaled, err := cost.Mul(sold)
	if err != nil {
		return money.Money{}, err
	}
	return scaled.Div(bought)
}

// ReinvestmentExemption is not evaluated; callers see a zero, uncomputed relief.
func (c CapitalGainsIncome) ReinvestmentExemption() ReinvestmentExemption {
	return ReinvestmentExemption{Amount: money.Zero(c.Currency())}
}

// Outcome classifies the sale and computes its tax treatment. Long-term equity
// and debt outcomes apply the annual exemption to this sale alone; use
// SummarizeCapitalGains to apply it once across a set of sales.
func (c CapitalGainsIncome) Outcome(cii CostIndex, l StatutoryLimits) (CapitalGainsOutcome, error) {
	out, err := c.classify(cii, l)
	if err != nil {
		return out, err
	}
	if out.LongTerm && isEquityLike(c.d.AssetType) {
		taxable, err := out.SpecialRateIncome.ExcessOver(l.LongTermEquityExemption)
		if err != nil {
			return out, err
		}
		out.SpecialRateIncome = taxable
		if out.SpecialRateTax, err = taxable.Percentage(out.SpecialRate); err != nil {
			return out, err
		}
	}
	return out, nil
}

func isEquityLike(a AssetType) bool { return a == AssetEquity || a == AssetDebt }

// classify computes everything except the long-term equity exemption.
func (c CapitalGainsIncome) classify(cii CostIndex, l StatutoryLimits) (CapitalGainsOutcome, error) {
	cur := c.Currency()
	zero := money.Zero(cur)
	out := CapitalGainsOutcome{
		HoldingYears:      c.HoldingPeriodYears(),
		Gain:              zero,
		Loss:              zero,
		IndexedCost:       zero,
		SlabIncome:        zero,
		SpecialRateIncome: zero,
		SpecialRateTax:    zero,
		SpecialRate:       decimal.Zero,
	}
	out.LongTerm = c.IsLongTerm(l)
	if c.d.AgriculturalLand {
		return out, nil
	}
	var err error
	if out.Gain, out.Loss, err = c.GainOrLoss(); err != nil {
		return out, err
	}
	if out.IndexedCost, err = c.CostOfAcquisition(); err != nil {
		return out, err
	}

	switch {
	case !out.LongTerm && c.d.AssetType == AssetEquity:
		out.SpecialRateIncome = out.Gain
		out.SpecialRate = l.ShortTermEquityRate
	case !out.LongTerm:
		out.SlabIncome = out.Gain
	case isEquityLike(c.d.AssetType):
		out.SpecialRateIncome = out.Gain
		out.SpecialRate = l.LongTermEquityRate
	default:
		if out.IndexedCost, err = c.IndexedCostOfAcquisition(cii, l); err != nil {
			return out, fmt.Errorf("indexing %s: %w", c.d.AssetType, err)
		}
		net, err := c.NetConsideration()
		if err != nil {
			return out, err
		}
		if out.SpecialRateIncome, err = net.ExcessOver(out.IndexedCost); err != nil {
			return out, err
		}
		out.SpecialRate = l.LongTermOtherRate
	}
	out.SpecialRateTax, err = out.SpecialRateIncome.Percentage(out.SpecialRate)
	return out, err
}

// CapitalGainsSummary aggregates a set of sales for one year.
type CapitalGainsSummary struct {
	Outcomes          []CapitalGainsOutcome `json:"outcomes"`
	TotalGain         money.Money           `json:"total_gain"`
	TotalLoss         money.Money           `json:"total_loss"`
	SlabIncome        money.Money           `json:"slab_income"`
	SpecialRateIncome money.Money           `json:"special_rate_income"`
	SpecialRateTax    money.Money           `json:"special_rate_tax"`
}

// SummarizeCapitalGains applies the long-term equity exemption once across all
// long-term equity and debt gains and totals the rest.
func SummarizeCapitalGains(sales []CapitalGainsIncome, cii CostIndex, l StatutoryLimits) (CapitalGainsSummary, error) {
	cur := l.Currency()
	zero := money.Zero(cur)
	sum := CapitalGainsSummary{
		TotalGain: zero, TotalLoss: zero, SlabIncome: zero,
		SpecialRateIncome: zero, SpecialRateTax: zero,
	}
	pooled := zero
	add := func(dst *money.Money, m money.Money) error {
		v, err := dst.Add(m)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	for i, sale := range sales {
		out, err := sale.classify(cii, l)
		if err != nil {
			return sum, fmt.Errorf("capital gain %d: %w", i, err)
		}
		sum.Outcomes = append(sum.Outcomes, out)
		if err := add(&sum.TotalGain, out.Gain); err != nil {
			return sum, err
		}
		if err := add(&sum.TotalLoss, out.Loss); err != nil {
			return sum, err
		}
		if err := add(&sum.SlabIncome, out.SlabIncome); err != nil {
			return sum, err
		}
		if out.LongTerm && isEquityLike(sale.d.AssetType) {
			if err := add(&pooled, out.SpecialRateIncome); err != nil {
				return sum, err
			}
			continue
		}
		if err := add(&sum.SpecialRateIncome, out.SpecialRateIncome); err != nil {
			return sum, err
		}
		if err := add(&sum.SpecialRateTax, out.SpecialRateTax); err != nil {
			return sum, err
		}
	}
	taxable, err := pooled.ExcessOver(l.LongTermEquityExemption)
	if err != nil {
		return sum, err
	}
	tax, err := taxable.Percentage(l.LongTermEquityRate)
	if err != nil {
		return sum, err
	}
	if err := add(&sum.SpecialRateIncome, taxable); err != nil {
		return sum, err
	}
	if err := add(&sum.SpecialRateTax, tax); err != nil {
		return sum, err
	}
	return sum, nil
}
