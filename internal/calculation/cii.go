package calculation

import (
	"fmt"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// CIITable looks up the cost inflation index from a RuleBook. Years before the
// base year use the base-year index.
type CIITable struct {
	Rules *domain.RuleBook
}

var _ domain.CostIndex = CIITable{}

func NewCIITable(rules *domain.RuleBook) CIITable {
	return CIITable{Rules: rules}
}

func (c CIITable) IndexFor(year domain.TaxYear) (decimal.Decimal, error) {
	if c.Rules == nil {
		return decimal.Zero, fmt.Errorf("%w: no rule book", domain.ErrIndexUnavailable)
	}
	if !c.Rules.CIIBaseYear.IsZero() && year.Before(c.Rules.CIIBaseYear) {
		year = c.Rules.CIIBaseYear
	}
	idx, ok := c.Rules.CostInflationIndex[year]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrIndexUnavailable, year)
	}
	return decimal.NewFromInt(int64(idx)), nil
}
