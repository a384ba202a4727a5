package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minTaxYear = 1950
	maxTaxYear = 2200
)

// TaxYear is an Indian financial year running from 1 April to 31 March.
// It is comparable and can be used as a map key.
type TaxYear struct {
	start int
}

// NewTaxYear returns the financial year beginning on 1 April of startYear.
func NewTaxYear(startYear int) (TaxYear, error) {
	if startYear < minTaxYear || startYear > maxTaxYear {
		return TaxYear{}, invalid("tax_year", "start year %d out of range", startYear)
	}
	return TaxYear{start: startYear}, nil
}

// MustTaxYear is NewTaxYear for literals; it panics on an invalid year.
func MustTaxYear(startYear int) TaxYear {
	ty, err := NewTaxYear(startYear)
	if err != nil {
		panic(err)
	}
	return ty
}

// TaxYearOf returns the financial year containing the given date.
func TaxYearOf(t time.Time) TaxYear {
	if t.Month() < time.April {
		return TaxYear{start: t.Year() - 1}
	}
	return TaxYear{start: t.Year()}
}

// CurrentTaxYear returns the financial year containing today.
func CurrentTaxYear() TaxYear {
	return TaxYearOf(now())
}

// ParseTaxYear accepts "2024-25" or "2024-2025".
func ParseTaxYear(s string) (TaxYear, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "-")
	if len(parts) != 2 || len(parts[0]) != 4 {
		return TaxYear{}, invalid("tax_year", "%q is not YYYY-YY or YYYY-YYYY", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return TaxYear{}, invalid("tax_year", "%q has a non-numeric start year", s)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return TaxYear{}, invalid("tax_year", "%q has a non-numeric end year", s)
	}
	switch len(parts[1]) {
	case 2:
		if end != (start+1)%100 {
			return TaxYear{}, invalid("tax_year", "%q does not span consecutive years", s)
		}
	case 4:
		if end != start+1 {
			return TaxYear{}, invalid("tax_year", "%q does not span consecutive years", s)
		}
	default:
		return TaxYear{}, invalid("tax_year", "%q is not YYYY-YY or YYYY-YYYY", s)
	}
	return NewTaxYear(start)
}

func (ty TaxYear) StartYear() int { return ty.start }
func (ty TaxYear) EndYear() int   { return ty.start + 1 }
func (ty TaxYear) IsZero() bool   { return ty.start == 0 }

// StartDate is 1 April of the start year.
func (ty TaxYear) StartDate() time.Time {
	return time.Date(ty.start, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// EndDate is 31 March of the end year.
func (ty TaxYear) EndDate() time.Time {
	return time.Date(ty.start+1, time.March, 31, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the calendar date of t falls inside the year.
func (ty TaxYear) Contains(t time.Time) bool {
	return TaxYearOf(t) == ty
}

// Compare returns -1, 0 or +1.
func (ty TaxYear) Compare(o TaxYear) int {
	switch {
	case ty.start < o.start:
		return -1
	case ty.start > o.start:
		return 1
	}
	return 0
}

func (ty TaxYear) Before(o TaxYear) bool { return ty.start < o.start }
func (ty TaxYear) After(o TaxYear) bool  { return ty.start > o.start }
func (ty TaxYear) Next() TaxYear         { return TaxYear{start: ty.start + 1} }
func (ty TaxYear) Prev() TaxYear         { return TaxYear{start: ty.start - 1} }

// String renders the short form, e.g. "2024-25".
func (ty TaxYear) String() string {
	if ty.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d-%02d", ty.start, (ty.start+1)%100)
}

func (ty TaxYear) MarshalText() ([]byte, error) {
	return []byte(ty.String()), nil
}

func (ty *TaxYear) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*ty = TaxYear{}
		return nil
	}
	parsed, err := ParseTaxYear(string(text))
	if err != nil {
		return err
	}
	*ty = parsed
	return nil
}
