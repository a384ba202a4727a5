package domain

import "strings"

// Regime selects one of the two mutually exclusive computation modes.
type Regime string

const (
	RegimeOld Regime = "old"
	RegimeNew Regime = "new"
)

// Regimes lists both regimes in a stable order.
func Regimes() []Regime { return []Regime{RegimeOld, RegimeNew} }

func (r Regime) Valid() bool { return r == RegimeOld || r == RegimeNew }

// ParseRegime accepts "old" or "new" in any case.
func ParseRegime(s string) (Regime, error) {
	r := Regime(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", invalid("regime", "%q must be 'old' or 'new'", s)
	}
	return r, nil
}
