package dateutil

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ISODate is the calendar-date layout used in documents and input files.
const ISODate = "2006-01-02"

// CompletedYears returns the whole years elapsed between from and to. The count is
// reduced by one when to's (month, day) falls before from's (month, day).
func CompletedYears(from, to time.Time) int {
	years := to.Year() - from.Year()
	if to.Month() < from.Month() ||
		(to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return years
}

// IsLeapYear checks if a year is a leap year
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// Date is a calendar date that serializes as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate wraps t as a calendar date.
func NewDate(t time.Time) Date { return Date{DateOf(t)} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(ISODate)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(ISODate) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		*d = Date{}
		return nil
	}
	t, err := ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Time = t
	return nil
}
