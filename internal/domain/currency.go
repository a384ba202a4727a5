package domain

import (
	"github.com/incometax/taxcalc/pkg/money"
)

// alignCurrency makes zero-valued fields adopt cur and rejects any non-zero
// field held in a different currency.
func alignCurrency(field, cur string, fields ...*money.Money) error {
	for _, m := range fields {
		if m.IsZero() {
			*m = money.Zero(cur)
			continue
		}
		if m.Currency() != cur {
			return invalid(field, "mixes %s with %s", m.Currency(), cur)
		}
	}
	return nil
}
