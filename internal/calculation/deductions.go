package calculation

import (
	"sort"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
)

// DeductionsProvider supplies the Chapter VI-A style deductions claimable
// against gross total income.
type DeductionsProvider interface {
	TotalDeductions(regime domain.Regime, year domain.TaxYear) (money.Money, error)
	Entries(regime domain.Regime, year domain.TaxYear) ([]DeductionEntry, error)
}

// DeductionEntry is one claimed deduction. Entries sharing a Section share its
// Cap; a zero Cap is uncapped. An empty Regimes list means old regime only.
type DeductionEntry struct {
	Section     string          `yaml:"section" json:"section"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Amount      money.Money     `yaml:"amount" json:"amount"`
	Cap         money.Money     `yaml:"cap" json:"cap"`
	Regimes     []domain.Regime `yaml:"regimes,omitempty" json:"regimes,omitempty"`
}

func (e DeductionEntry) allowedUnder(r domain.Regime) bool {
	if len(e.Regimes) == 0 {
		return r == domain.RegimeOld
	}
	for _, allowed := range e.Regimes {
		if allowed == r {
			return true
		}
	}
	return false
}

// DeductionList is a static DeductionsProvider.
type DeductionList struct {
	Currency string
	Items    []DeductionEntry
}

var _ DeductionsProvider = DeductionList{}

func (d DeductionList) Entries(regime domain.Regime, _ domain.TaxYear) ([]DeductionEntry, error) {
	var out []DeductionEntry
	for _, e := range d.Items {
		if e.allowedUnder(regime) {
			out = append(out, e)
		}
	}
	return out, nil
}

// TotalDeductions sums allowed entries per section, applies each section's
// smallest positive cap, then totals the sections.
func (d DeductionList) TotalDeductions(regime domain.Regime, year domain.TaxYear) (money.Money, error) {
	entries, err := d.Entries(regime, year)
	if err != nil {
		return money.Money{}, err
	}
	sections := make(map[string]money.Money)
	caps := make(map[string]money.Money)
	for _, e := range entries {
		sum, err := sections[e.Section].Add(e.Amount)
		if err != nil {
			return money.Money{}, err
		}
		sections[e.Section] = sum
		if !e.Cap.IsPositive() {
			continue
		}
		if existing, ok := caps[e.Section]; ok {
			if caps[e.Section], err = money.Min(existing, e.Cap); err != nil {
				return money.Money{}, err
			}
		} else {
			caps[e.Section] = e.Cap
		}
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	total := money.Zero(d.Currency)
	for _, name := range names {
		claimed := sections[name]
		if limit, ok := caps[name]; ok {
			if claimed, err = money.Min(claimed, limit); err != nil {
				return money.Money{}, err
			}
		}
		if total, err = total.Add(claimed); err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}
