package calculation

import (
	"fmt"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
)

// TaxInput is everything needed to compute one year's liability.
type TaxInput struct {
	TaxYear    domain.TaxYear
	Regime     domain.Regime
	Income     domain.IncomeSet
	Deductions DeductionsProvider
}

// Engine orchestrates the income heads, slab table and charges into a TaxComputation.
type Engine struct {
	Rules  *domain.RuleBook
	Slabs  SlabTable
	Index  domain.CostIndex
	Logger Logger
}

// NewEngine wires an engine with RuleBook-backed slabs and cost index.
func NewEngine(rules *domain.RuleBook) *Engine {
	return &Engine{
		Rules:  rules,
		Slabs:  NewRuleBookSlabs(rules),
		Index:  NewCIITable(rules),
		Logger: NopLogger{},
	}
}

// SetLogger sets a logger (nil resets to NopLogger).
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// accumulator threads the first error through a chain of additions.
type accumulator struct {
	cur string
	err error
}

func (a *accumulator) sum(items ...money.Money) money.Money {
	if a.err != nil {
		return money.Zero(a.cur)
	}
	total, err := money.Sum(a.cur, items...)
	if err != nil {
		a.err = err
		return money.Zero(a.cur)
	}
	return total
}

// Compute produces the full computation for in.Regime.
func (e *Engine) Compute(in TaxInput) (domain.TaxComputation, error) {
	if !in.Regime.Valid() {
		return domain.TaxComputation{}, fmt.Errorf("compute: regime %q: %w", in.Regime, domain.ErrValidation)
	}
	rules, err := e.Rules.ForYear(in.TaxYear)
	if err != nil {
		return domain.TaxComputation{}, err
	}
	l := rules.Limits
	cur := l.Currency()
	zero := money.Zero(cur)
	acc := &accumulator{cur: cur}

	c := domain.TaxComputation{
		TaxYear:                 in.TaxYear,
		Regime:                  in.Regime,
		GrossSalary:             zero,
		SalaryExemptions:        zero,
		TaxableSalary:           zero,
		Perquisites:             in.Income.Perquisites,
		HousePropertyIncome:     zero,
		HousePropertyLoss:       zero,
		HousePropertyLossSetOff: zero,
		OtherIncome:             zero,
		CasualIncome:            zero,
		RetirementTaxable:       zero,
		Deductions:              zero,
		ComputedAt:              nowFunc().UTC(),
	}
	if c.Perquisites.IsZero() {
		c.Perquisites = zero
	}

	if s := in.Income.Salary; s != nil {
		withEx, err := s.WithExemptions(l)
		if err != nil {
			return c, fmt.Errorf("salary: %w", err)
		}
		if c.GrossSalary, err = withEx.GrossSalary(); err != nil {
			return c, fmt.Errorf("salary: %w", err)
		}
		if c.SalaryExemptions, err = withEx.TotalExemptions(); err != nil {
			return c, fmt.Errorf("salary: %w", err)
		}
		if c.TaxableSalary, err = withEx.TaxableSalary(); err != nil {
			return c, fmt.Errorf("salary: %w", err)
		}
	}

	if h := in.Income.HouseProperty; h != nil {
		res, err := h.Compute(in.TaxYear, in.Regime, l)
		if err != nil {
			return c, fmt.Errorf("house property: %w", err)
		}
		c.HousePropertyIncome, c.HousePropertyLoss = res.Income, res.Loss
	}

	var otherFlatTax = zero
	if o := in.Income.Other; o != nil {
		if c.OtherIncome, err = o.SlabIncome(); err != nil {
			return c, fmt.Errorf("other income: %w", err)
		}
		c.CasualIncome = o.CasualIncome()
		if otherFlatTax, err = o.FlatRateTax(l); err != nil {
			return c, fmt.Errorf("other income: %w", err)
		}
	}

	gains, err := domain.SummarizeCapitalGains(in.Income.CapitalGains, e.Index, l)
	if err != nil {
		return c, fmt.Errorf("capital gains: %w", err)
	}
	c.CapitalGainsSlab = gains.SlabIncome
	c.CapitalGainsSpecial = gains.SpecialRateIncome

	if r := in.Income.Retirement; r != nil {
		if c.RetirementTaxable, err = r.TaxableIncome(l); err != nil {
			return c, fmt.Errorf("retirement benefits: %w", err)
		}
	}

	slabHeads := acc.sum(c.TaxableSalary, c.Perquisites, c.HousePropertyIncome, c.OtherIncome, c.CapitalGainsSlab, c.RetirementTaxable)
	if acc.err != nil {
		return c, acc.err
	}

	// House property loss offsets other slab income only under the old regime,
	// up to the statutory cap and never beyond the income available.
	if in.Regime == domain.RegimeOld && c.HousePropertyLoss.IsPositive() {
		if c.HousePropertyLossSetOff, err = money.Min(c.HousePropertyLoss, l.HousePropertyLossSetOffCap, slabHeads); err != nil {
			return c, err
		}
	}
	if c.GrossTotalIncome, err = slabHeads.Sub(c.HousePropertyLossSetOff); err != nil {
		return c, err
	}

	if in.Deductions != nil {
		claimed, err := in.Deductions.TotalDeductions(in.Regime, in.TaxYear)
		if err != nil {
			return c, fmt.Errorf("deductions: %w", err)
		}
		// deductions cannot take income below zero
		if c.Deductions, err = money.Min(claimed, c.GrossTotalIncome); err != nil {
			return c, fmt.Errorf("deductions: %w", err)
		}
	}
	if c.TaxableIncome, err = c.GrossTotalIncome.Sub(c.Deductions); err != nil {
		return c, err
	}
	c.TotalIncome = acc.sum(c.TaxableIncome, c.CapitalGainsSpecial, c.CasualIncome)
	if acc.err != nil {
		return c, acc.err
	}

	if c.SlabTax, err = e.Slabs.TaxOnSlabIncome(c.TaxableIncome, in.Regime, in.TaxYear); err != nil {
		return c, err
	}
	if c.Rebate, err = e.Slabs.Rebate(c.TotalIncome, c.SlabTax, in.Regime, in.TaxYear); err != nil {
		return c, err
	}
	afterRebate, err := c.SlabTax.Sub(c.Rebate)
	if err != nil {
		return c, err
	}
	c.SpecialRateTax = acc.sum(gains.SpecialRateTax, otherFlatTax)
	c.TaxBeforeSurcharge = acc.sum(afterRebate, c.SpecialRateTax)
	if acc.err != nil {
		return c, acc.err
	}
	if c.Surcharge, err = e.Slabs.Surcharge(c.TaxBeforeSurcharge, c.TotalIncome, in.Regime, in.TaxYear); err != nil {
		return c, err
	}
	withSurcharge := acc.sum(c.TaxBeforeSurcharge, c.Surcharge)
	if acc.err != nil {
		return c, acc.err
	}
	if c.Cess, err = e.Slabs.Cess(withSurcharge, in.TaxYear); err != nil {
		return c, err
	}
	c.TotalTax = acc.sum(withSurcharge, c.Cess)
	if acc.err != nil {
		return c, acc.err
	}

	e.Logger.Debugf("computed %s %s regime: taxable=%s slab=%s rebate=%s special=%s surcharge=%s cess=%s total=%s",
		in.TaxYear, in.Regime, c.TaxableIncome, c.SlabTax, c.Rebate, c.SpecialRateTax, c.Surcharge, c.Cess, c.TotalTax)
	return c, nil
}

// CompareRegimes computes both regimes and recommends the one with lower tax.
// On a tie the new regime is recommended.
func (e *Engine) CompareRegimes(in TaxInput) (domain.RegimeComparison, error) {
	var cmp domain.RegimeComparison
	oldIn, newIn := in, in
	oldIn.Regime, newIn.Regime = domain.RegimeOld, domain.RegimeNew

	var err error
	if cmp.Old, err = e.Compute(oldIn); err != nil {
		return cmp, fmt.Errorf("old regime: %w", err)
	}
	if cmp.New, err = e.Compute(newIn); err != nil {
		return cmp, fmt.Errorf("new regime: %w", err)
	}
	oldCheaper, err := cmp.Old.TotalTax.LessThan(cmp.New.TotalTax)
	if err != nil {
		return cmp, err
	}
	if oldCheaper {
		cmp.Recommended = domain.RegimeOld
		cmp.Savings, err = cmp.New.TotalTax.Sub(cmp.Old.TotalTax)
	} else {
		cmp.Recommended = domain.RegimeNew
		cmp.Savings, err = cmp.Old.TotalTax.Sub(cmp.New.TotalTax)
	}
	if err != nil {
		return cmp, err
	}
	e.Logger.Infof("regime comparison %s: old=%s new=%s recommended=%s", in.TaxYear, cmp.Old.TotalTax, cmp.New.TotalTax, cmp.Recommended)
	return cmp, nil
}

// ComputeRecord computes a record under its own year and regime and stores the
// result on it. A finalized record is left untouched.
func (e *Engine) ComputeRecord(rec *domain.TaxationRecord, deductions DeductionsProvider) (domain.TaxationCalculated, error) {
	if rec.IsFinalized() {
		return domain.TaxationCalculated{}, fmt.Errorf("%s: %w", rec.Key(), domain.ErrFinalizedRecord)
	}
	key := rec.Key()
	c, err := e.Compute(TaxInput{
		TaxYear:    key.TaxYear,
		Regime:     rec.Regime(),
		Income:     rec.Income(),
		Deductions: deductions,
	})
	if err != nil {
		return domain.TaxationCalculated{}, fmt.Errorf("%s: %w", key, err)
	}
	if err := rec.RecordComputation(c); err != nil {
		return domain.TaxationCalculated{}, err
	}
	return domain.TaxationCalculated{
		EmployeeID:     key.EmployeeID,
		OrganisationID: key.OrganisationID,
		TaxYear:        key.TaxYear,
		Regime:         rec.Regime(),
		TaxableIncome:  c.TaxableIncome,
		TotalTax:       c.TotalTax,
		At:             c.ComputedAt,
	}, nil
}
