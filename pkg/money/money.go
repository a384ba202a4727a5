package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultCurrency is the currency assumed by the zero value and by bare YAML numbers.
const DefaultCurrency = "INR"

const places = 2

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrNegativeResult   = errors.New("subtraction result is negative")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrNegativeFactor   = errors.New("multiplier cannot be negative")
	ErrInvalidDivisor   = errors.New("divisor must be positive")
	ErrInvalidCurrency  = errors.New("currency code must be 3 letters")
)

// CurrencyMismatchError reports the two currencies involved in a failed operation.
type CurrencyMismatchError struct {
	Op    string
	Left  string
	Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%s: %s vs %s: %v", e.Op, e.Left, e.Right, ErrCurrencyMismatch)
}

func (e *CurrencyMismatchError) Unwrap() error { return ErrCurrencyMismatch }

// Money represents a non-negative monetary amount, always held at two decimal places.
// The zero value is 0.00 in DefaultCurrency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Money, rounding half-up to two places.
func New(amount decimal.Decimal, currency string) (Money, error) {
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	rounded := amount.Round(places)
	if rounded.IsNegative() {
		return Money{}, fmt.Errorf("%s %s: %w", rounded.StringFixed(places), cur, ErrNegativeAmount)
	}
	return Money{amount: rounded, currency: cur}, nil
}

// MustNew is New for literals known to be valid; it panics otherwise.
func MustNew(amount decimal.Decimal, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NewFromString parses a decimal string such as "1234.50".
func NewFromString(value, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return New(d, currency)
}

// Rupees creates a whole-rupee amount in DefaultCurrency.
func Rupees(v int64) Money {
	return MustNew(decimal.NewFromInt(v), DefaultCurrency)
}

// Zero returns a fresh zero amount in the given currency.
func Zero(currency string) Money {
	cur, err := normalizeCurrency(currency)
	if err != nil {
		cur = DefaultCurrency
	}
	return Money{amount: decimal.Zero, currency: cur}
}

func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency, nil
	}
	if len(c) != 3 {
		return "", fmt.Errorf("%q: %w", c, ErrInvalidCurrency)
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%q: %w", c, ErrInvalidCurrency)
		}
	}
	return c, nil
}

// Amount returns the underlying decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the ISO currency code.
func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

func (m Money) same(op string, o Money) error {
	if m.Currency() != o.Currency() {
		return &CurrencyMismatchError{Op: op, Left: m.Currency(), Right: o.Currency()}
	}
	return nil
}

func (m Money) with(d decimal.Decimal) Money {
	return Money{amount: d.Round(places), currency: m.Currency()}
}

// Add adds another Money amount
func (m Money) Add(o Money) (Money, error) {
	if err := m.same("add", o); err != nil {
		return Money{}, err
	}
	return m.with(m.amount.Add(o.amount)), nil
}

// Sub subtracts o and fails if the result would be negative.
func (m Money) Sub(o Money) (Money, error) {
	if err := m.same("subtract", o); err != nil {
		return Money{}, err
	}
	d := m.amount.Sub(o.amount)
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%s - %s: %w", m, o, ErrNegativeResult)
	}
	return m.with(d), nil
}

// ExcessOver returns max(m-o, 0). Use it only where a rule floors a difference at zero.
func (m Money) ExcessOver(o Money) (Money, error) {
	if err := m.same("excess", o); err != nil {
		return Money{}, err
	}
	if m.amount.LessThanOrEqual(o.amount) {
		return Zero(m.Currency()), nil
	}
	return m.with(m.amount.Sub(o.amount)), nil
}

// Mul multiplies by a non-negative factor.
func (m Money) Mul(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, fmt.Errorf("%s: %w", factor, ErrNegativeFactor)
	}
	return m.with(m.amount.Mul(factor)), nil
}

// Div divides by a positive divisor.
func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if !divisor.IsPositive() {
		return Money{}, fmt.Errorf("%s: %w", divisor, ErrInvalidDivisor)
	}
	return m.with(m.amount.Div(divisor)), nil
}

// Percentage returns amount * p / 100.
func (m Money) Percentage(p decimal.Decimal) (Money, error) {
	if p.IsNegative() {
		return Money{}, fmt.Errorf("percentage %s: %w", p, ErrNegativeFactor)
	}
	return m.with(m.amount.Mul(p).Div(decimal.NewFromInt(100))), nil
}

// Cmp compares two amounts of the same currency.
func (m Money) Cmp(o Money) (int, error) {
	if err := m.same("compare", o); err != nil {
		return 0, err
	}
	return m.amount.Cmp(o.amount), nil
}

// GreaterThan reports m > o; a currency mismatch is an error.
func (m Money) GreaterThan(o Money) (bool, error) {
	c, err := m.Cmp(o)
	return c > 0, err
}

// LessThan reports m < o; a currency mismatch is an error.
func (m Money) LessThan(o Money) (bool, error) {
	c, err := m.Cmp(o)
	return c < 0, err
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(o Money) bool {
	return m.Currency() == o.Currency() && m.amount.Equal(o.amount)
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive checks if the amount is positive
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// Min returns the smallest of the given amounts.
func Min(first Money, rest ...Money) (Money, error) {
	out := first
	for _, m := range rest {
		c, err := m.Cmp(out)
		if err != nil {
			return Money{}, err
		}
		if c < 0 {
			out = m
		}
	}
	return out, nil
}

// Max returns the largest of the given amounts.
func Max(first Money, rest ...Money) (Money, error) {
	out := first
	for _, m := range rest {
		c, err := m.Cmp(out)
		if err != nil {
			return Money{}, err
		}
		if c > 0 {
			out = m
		}
	}
	return out, nil
}

// Sum adds amounts in the given currency. An empty list sums to zero.
func Sum(currency string, items ...Money) (Money, error) {
	total := Zero(currency)
	for _, m := range items {
		var err error
		if total, err = total.Add(m); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// String returns the amount with two decimal places.
func (m Money) String() string {
	return m.amount.StringFixed(places)
}

// Format renders the amount with its currency code, e.g. "INR 1250.00".
func (m Money) Format() string {
	return m.Currency() + " " + m.String()
}

type document struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

// MarshalJSON encodes Money as {"amount": 12.50, "currency": "INR"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{Amount: json.Number(m.String()), Currency: m.Currency()})
}

// UnmarshalJSON decodes the {"amount", "currency"} form.
func (m *Money) UnmarshalJSON(data []byte) error {
	var doc document
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	if doc.Amount == "" {
		doc.Amount = "0"
	}
	parsed, err := NewFromString(doc.Amount.String(), doc.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML encodes Money as an amount/currency mapping.
func (m Money) MarshalYAML() (interface{}, error) {
	return map[string]string{"amount": m.String(), "currency": m.Currency()}, nil
}

// UnmarshalYAML accepts either a bare number (DefaultCurrency) or an amount/currency mapping.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := NewFromString(value.Value, DefaultCurrency)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*m = parsed
		return nil
	}
	var aux struct {
		Amount   string `yaml:"amount"`
		Currency string `yaml:"currency"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	if aux.Amount == "" {
		aux.Amount = "0"
	}
	parsed, err := NewFromString(aux.Amount, aux.Currency)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = parsed
	return nil
}
