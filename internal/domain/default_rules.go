package domain

import (
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

func pct(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func lakh(v int64) money.Money { return money.Rupees(v * 100000) }

// DefaultLimits returns the statutory limits in force for the given year.
func DefaultLimits(ty TaxYear) StatutoryLimits {
	leaveCap := money.Rupees(300000)
	if ty.StartYear() >= 2023 {
		leaveCap = money.Rupees(2500000)
	}
	return StatutoryLimits{
		MinServiceYears:     5,
		ConveyanceAnnualCap: money.Rupees(19200),
		MedicalAnnualCap:    money.Rupees(15000),
		HRARentBasicPercent: pct(10),
		HRAMetroPercent:     pct(50),
		HRANonMetroPercent:  pct(40),

		GratuityCap:         money.Rupees(2000000),
		GratuityDaysPerYear: pct(15),
		GratuityMonthDays:   pct(26),
		LeaveEncashmentCap:  leaveCap,
		LeaveMonthDays:      pct(30),

		HouseStandardDeductionPercent: pct(30),
		SelfOccupiedInterestCap:       money.Rupees(200000),
		PreConstructionInstallments:   5,
		HousePropertyLossSetOffCap:    money.Rupees(200000),

		VRSCap:                       money.Rupees(500000),
		CommutedPensionExemptDivisor: pct(3),

		ShortTermEquityRate:     pct(15),
		LongTermEquityRate:      pct(10),
		LongTermEquityExemption: money.Rupees(100000),
		LongTermOtherRate:       pct(20),
		LongTermHoldingYears: map[AssetType]int{
			AssetEquity:   1,
			AssetDebt:     1,
			AssetProperty: 2,
			AssetOther:    3,
		},
		CasualIncomeRate: pct(30),
	}
}

func brackets(rates []float64, bounds ...int64) []TaxBracket {
	out := make([]TaxBracket, len(rates))
	from := money.Zero(money.DefaultCurrency)
	for i, r := range rates {
		b := TaxBracket{From: from, Rate: pct(r)}
		if i < len(bounds) {
			b.UpTo = money.Rupees(bounds[i])
			from = b.UpTo
		}
		out[i] = b
	}
	return out
}

func surchargeBands(topRate float64) []SurchargeBand {
	return []SurchargeBand{
		{Above: lakh(50), Rate: pct(10)},
		{Above: lakh(100), Rate: pct(15)},
		{Above: lakh(200), Rate: pct(25)},
		{Above: lakh(500), Rate: pct(topRate)},
	}
}

func oldRegimeRules() RegimeRules {
	return RegimeRules{
		Slabs:     brackets([]float64{0, 5, 20, 30}, 250000, 500000, 1000000),
		Rebate:    Rebate{IncomeLimit: lakh(5), MaxRebate: money.Rupees(12500)},
		Surcharge: surchargeBands(37),
	}
}

func newRegimeRules(ty TaxYear) RegimeRules {
	switch {
	case ty.StartYear() >= 2025:
		return RegimeRules{
			Slabs:     brackets([]float64{0, 5, 10, 15, 20, 25, 30}, 400000, 800000, 1200000, 1600000, 2000000, 2400000),
			Rebate:    Rebate{IncomeLimit: lakh(12), MaxRebate: money.Rupees(60000)},
			Surcharge: surchargeBands(25),
		}
	case ty.StartYear() == 2024:
		return RegimeRules{
			Slabs:     brackets([]float64{0, 5, 10, 15, 20, 30}, 300000, 700000, 1000000, 1200000, 1500000),
			Rebate:    Rebate{IncomeLimit: lakh(7), MaxRebate: money.Rupees(25000)},
			Surcharge: surchargeBands(25),
		}
	case ty.StartYear() == 2023:
		return RegimeRules{
			Slabs:     brackets([]float64{0, 5, 10, 15, 20, 30}, 300000, 600000, 900000, 1200000, 1500000),
			Rebate:    Rebate{IncomeLimit: lakh(7), MaxRebate: money.Rupees(25000)},
			Surcharge: surchargeBands(25),
		}
	default:
		return RegimeRules{
			Slabs:     brackets([]float64{0, 5, 10, 15, 20, 25, 30}, 250000, 500000, 750000, 1000000, 1250000, 1500000),
			Rebate:    Rebate{IncomeLimit: lakh(5), MaxRebate: money.Rupees(12500)},
			Surcharge: surchargeBands(37),
		}
	}
}

var defaultCII = map[int]int{
	2001: 100, 2002: 105, 2003: 109, 2004: 113, 2005: 117, 2006: 122,
	2007: 129, 2008: 137, 2009: 148, 2010: 167, 2011: 184, 2012: 200,
	2013: 220, 2014: 240, 2015: 254, 2016: 264, 2017: 272, 2018: 280,
	2019: 289, 2020: 301, 2021: 317, 2022: 331, 2023: 348, 2024: 363,
}

// DefaultRuleBook returns the built-in rules for 2022-23 through 2025-26.
func DefaultRuleBook() *RuleBook {
	rb := &RuleBook{
		Years:              make(map[TaxYear]YearRules),
		CostInflationIndex: make(map[TaxYear]int, len(defaultCII)),
		CIIBaseYear:        MustTaxYear(2001),
	}
	for start := 2022; start <= 2025; start++ {
		ty := MustTaxYear(start)
		rb.Years[ty] = YearRules{
			Limits: DefaultLimits(ty),
			Regimes: map[Regime]RegimeRules{
				RegimeOld: oldRegimeRules(),
				RegimeNew: newRegimeRules(ty),
			},
			CessRate: pct(4),
		}
	}
	for start, idx := range defaultCII {
		rb.CostInflationIndex[MustTaxYear(start)] = idx
	}
	return rb
}
