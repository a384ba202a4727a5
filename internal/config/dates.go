package config

import (
	"time"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/dateutil"
)

// dateIn returns the given day and month within year, which may fall in
// either calendar year of the financial year.
func dateIn(year domain.TaxYear, month time.Month, d int) dateutil.Date {
	y := year.StartYear()
	if month < time.April {
		y = year.EndYear()
	}
	return dateutil.NewDate(time.Date(y, month, d, 0, 0, 0, 0, time.UTC))
}
