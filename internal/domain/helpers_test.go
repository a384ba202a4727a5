package domain

import (
	"testing"
	"time"

	"github.com/incometax/taxcalc/pkg/dateutil"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rupees(v int64) money.Money { return money.Rupees(v) }

func mustMoney(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.NewFromString(s, money.DefaultCurrency)
	require.NoError(t, err)
	return m
}

func assertMoney(t *testing.T, expected string, actual money.Money, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, expected, actual.String(), msgAndArgs...)
}

func day(y int, m time.Month, d int) dateutil.Date {
	return dateutil.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func limits2024() StatutoryLimits { return DefaultLimits(MustTaxYear(2024)) }

// fixedIndex is a CostIndex backed by a plain map.
type fixedIndex map[int]int64

func (f fixedIndex) IndexFor(year TaxYear) (decimal.Decimal, error) {
	v, ok := f[year.StartYear()]
	if !ok {
		return decimal.Zero, ErrIndexUnavailable
	}
	return decimal.NewFromInt(v), nil
}
