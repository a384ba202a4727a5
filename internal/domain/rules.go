package domain

import (
	"fmt"
	"sort"

	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

// AssetType classifies a capital asset for holding-period and rate purposes.
type AssetType string

const (
	AssetEquity   AssetType = "equity"
	AssetDebt     AssetType = "debt"
	AssetProperty AssetType = "property"
	AssetOther    AssetType = "other"
)

func (a AssetType) Valid() bool {
	switch a {
	case AssetEquity, AssetDebt, AssetProperty, AssetOther:
		return true
	}
	return false
}

// StatutoryLimits holds every cap, rate and threshold used by the income formulas.
// Percentages are expressed as whole numbers (15 means 15%).
type StatutoryLimits struct {
	MinServiceYears int `yaml:"min_service_years" json:"min_service_years"`

	ConveyanceAnnualCap money.Money `yaml:"conveyance_annual_cap" json:"conveyance_annual_cap"`
	MedicalAnnualCap    money.Money `yaml:"medical_annual_cap" json:"medical_annual_cap"`

	HRARentBasicPercent decimal.Decimal `yaml:"hra_rent_basic_percent" json:"hra_rent_basic_percent"`
	HRAMetroPercent     decimal.Decimal `yaml:"hra_metro_percent" json:"hra_metro_percent"`
	HRANonMetroPercent  decimal.Decimal `yaml:"hra_non_metro_percent" json:"hra_non_metro_percent"`

	GratuityCap         money.Money     `yaml:"gratuity_cap" json:"gratuity_cap"`
	GratuityDaysPerYear decimal.Decimal `yaml:"gratuity_days_per_year" json:"gratuity_days_per_year"`
	GratuityMonthDays   decimal.Decimal `yaml:"gratuity_month_days" json:"gratuity_month_days"`

	LeaveEncashmentCap money.Money     `yaml:"leave_encashment_cap" json:"leave_encashment_cap"`
	LeaveMonthDays     decimal.Decimal `yaml:"leave_month_days" json:"leave_month_days"`

	HouseStandardDeductionPercent decimal.Decimal `yaml:"house_standard_deduction_percent" json:"house_standard_deduction_percent"`
	SelfOccupiedInterestCap       money.Money     `yaml:"self_occupied_interest_cap" json:"self_occupied_interest_cap"`
	PreConstructionInstallments   int             `yaml:"pre_construction_installments" json:"pre_construction_installments"`
	HousePropertyLossSetOffCap    money.Money     `yaml:"house_property_loss_set_off_cap" json:"house_property_loss_set_off_cap"`

	VRSCap                       money.Money     `yaml:"vrs_cap" json:"vrs_cap"`
	CommutedPensionExemptDivisor decimal.Decimal `yaml:"commuted_pension_exempt_divisor" json:"commuted_pension_exempt_divisor"`

	ShortTermEquityRate     decimal.Decimal   `yaml:"short_term_equity_rate" json:"short_term_equity_rate"`
	LongTermEquityRate      decimal.Decimal   `yaml:"long_term_equity_rate" json:"long_term_equity_rate"`
	LongTermEquityExemption money.Money       `yaml:"long_term_equity_exemption" json:"long_term_equity_exemption"`
	LongTermOtherRate       decimal.Decimal   `yaml:"long_term_other_rate" json:"long_term_other_rate"`
	LongTermHoldingYears    map[AssetType]int `yaml:"long_term_holding_years" json:"long_term_holding_years"`

	CasualIncomeRate decimal.Decimal `yaml:"casual_income_rate" json:"casual_income_rate"`
}

// Currency is the currency every cap is denominated in.
func (l StatutoryLimits) Currency() string { return l.GratuityCap.Currency() }

// LongTermThreshold returns the completed holding years at which an asset turns long-term.
func (l StatutoryLimits) LongTermThreshold(a AssetType) int {
	if years, ok := l.LongTermHoldingYears[a]; ok {
		return years
	}
	return l.LongTermHoldingYears[AssetOther]
}

// TaxBracket taxes the slice of income above From and up to UpTo at Rate percent.
// A zero UpTo marks the open-ended top bracket.
type TaxBracket struct {
	From money.Money     `yaml:"from" json:"from"`
	UpTo money.Money     `yaml:"up_to" json:"up_to"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
}

// Rebate is granted in full (up to MaxRebate) when total income does not exceed IncomeLimit.
type Rebate struct {
	IncomeLimit money.Money `yaml:"income_limit" json:"income_limit"`
	MaxRebate   money.Money `yaml:"max_rebate" json:"max_rebate"`
}

// SurchargeBand applies Rate percent of tax once total income exceeds Above.
type SurchargeBand struct {
	Above money.Money     `yaml:"above" json:"above"`
	Rate  decimal.Decimal `yaml:"rate" json:"rate"`
}

// RegimeRules are the slab, rebate and surcharge tables for one regime.
type RegimeRules struct {
	Slabs     []TaxBracket    `yaml:"slabs" json:"slabs"`
	Rebate    Rebate          `yaml:"rebate" json:"rebate"`
	Surcharge []SurchargeBand `yaml:"surcharge" json:"surcharge"`
}

// YearRules bundles everything the engine needs for one financial year.
type YearRules struct {
	Limits   StatutoryLimits        `yaml:"limits" json:"limits"`
	Regimes  map[Regime]RegimeRules `yaml:"regimes" json:"regimes"`
	CessRate decimal.Decimal        `yaml:"cess_rate" json:"cess_rate"`
}

// ForRegime returns the tables for one regime.
func (y YearRules) ForRegime(r Regime) (RegimeRules, error) {
	rr, ok := y.Regimes[r]
	if !ok {
		return RegimeRules{}, fmt.Errorf("%w: regime %q", ErrRulesUnavailable, r)
	}
	return rr, nil
}

// RuleBook is the versioned statutory configuration keyed by financial year.
type RuleBook struct {
	Years              map[TaxYear]YearRules `yaml:"years" json:"years"`
	CostInflationIndex map[TaxYear]int       `yaml:"cost_inflation_index" json:"cost_inflation_index"`
	CIIBaseYear        TaxYear               `yaml:"cii_base_year" json:"cii_base_year"`
}

// ForYear returns the rules for the given year or ErrRulesUnavailable.
func (rb *RuleBook) ForYear(ty TaxYear) (YearRules, error) {
	if rb == nil {
		return YearRules{}, fmt.Errorf("%w: %s (empty rule book)", ErrRulesUnavailable, ty)
	}
	y, ok := rb.Years[ty]
	if !ok {
		return YearRules{}, fmt.Errorf("%w: %s", ErrRulesUnavailable, ty)
	}
	return y, nil
}

// SupportedYears lists the configured years in ascending order.
func (rb *RuleBook) SupportedYears() []TaxYear {
	years := make([]TaxYear, 0, len(rb.Years))
	for ty := range rb.Years {
		years = append(years, ty)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Before(years[j]) })
	return years
}

// Validate checks the structural consistency of every configured year.
func (rb *RuleBook) Validate() error {
	if len(rb.Years) == 0 {
		return invalid("years", "at least one tax year is required")
	}
	for _, ty := range rb.SupportedYears() {
		y := rb.Years[ty]
		if y.Limits.MinServiceYears < 0 {
			return invalid(ty.String()+".limits.min_service_years", "cannot be negative")
		}
		if !y.Limits.GratuityMonthDays.IsPositive() || !y.Limits.LeaveMonthDays.IsPositive() {
			return invalid(ty.String()+".limits", "month-day divisors must be positive")
		}
		if !y.Limits.CommutedPensionExemptDivisor.IsPositive() {
			return invalid(ty.String()+".limits.commuted_pension_exempt_divisor", "must be positive")
		}
		if y.Limits.PreConstructionInstallments <= 0 {
			return invalid(ty.String()+".limits.pre_construction_installments", "must be positive")
		}
		for _, r := range Regimes() {
			rr, ok := y.Regimes[r]
			if !ok {
				return invalid(ty.String()+".regimes", "missing %s regime", r)
			}
			if err := validateSlabs(rr.Slabs); err != nil {
				return fmt.Errorf("%s %s regime: %w", ty, r, err)
			}
		}
	}
	for ty, idx := range rb.CostInflationIndex {
		if idx <= 0 {
			return invalid("cost_inflation_index."+ty.String(), "index must be positive")
		}
	}
	return nil
}

func validateSlabs(slabs []TaxBracket) error {
	if len(slabs) == 0 {
		return invalid("slabs", "at least one bracket is required")
	}
	for i, b := range slabs {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(100)) {
			return invalid(fmt.Sprintf("slabs[%d].rate", i), "must be between 0 and 100")
		}
		last := i == len(slabs)-1
		if b.UpTo.IsZero() && !last {
			return invalid(fmt.Sprintf("slabs[%d].up_to", i), "only the last bracket may be open-ended")
		}
		if !b.UpTo.IsZero() && b.UpTo.Amount().LessThanOrEqual(b.From.Amount()) {
			return invalid(fmt.Sprintf("slabs[%d].up_to", i), "must exceed from")
		}
		if i > 0 && !b.From.Amount().Equal(slabs[i-1].UpTo.Amount()) {
			return invalid(fmt.Sprintf("slabs[%d].from", i), "must continue from the previous bracket")
		}
	}
	return nil
}
