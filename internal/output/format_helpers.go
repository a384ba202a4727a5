package output

import (
	"strconv"
	"strings"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

// FormatCurrency renders money with lakh/crore digit grouping, e.g. "INR 12,50,000.00".
func FormatCurrency(m money.Money) string {
	s := m.String()
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}
	return m.Currency() + " " + groupIndian(whole) + frac
}

// groupIndian inserts separators after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

func intToString(i int) string { return strconv.Itoa(i) }

// line is one labelled amount of a computation breakdown.
type line struct {
	Label  string
	Amount money.Money
}

// breakdown lists a computation in statement order.
func breakdown(c domain.TaxComputation) []line {
	return []line{
		{"Gross salary", c.GrossSalary},
		{"Salary exemptions", c.SalaryExemptions},
		{"Taxable salary", c.TaxableSalary},
		{"Perquisites", c.Perquisites},
		{"House property income", c.HousePropertyIncome},
		{"House property loss set off", c.HousePropertyLossSetOff},
		{"Other income", c.OtherIncome},
		{"Capital gains at slab rates", c.CapitalGainsSlab},
		{"Retirement benefits (taxable)", c.RetirementTaxable},
		{"Gross total income", c.GrossTotalIncome},
		{"Deductions", c.Deductions},
		{"Taxable income", c.TaxableIncome},
		{"Capital gains at special rates", c.CapitalGainsSpecial},
		{"Casual income", c.CasualIncome},
		{"Total income", c.TotalIncome},
		{"Slab tax", c.SlabTax},
		{"Rebate", c.Rebate},
		{"Special rate tax", c.SpecialRateTax},
		{"Tax before surcharge", c.TaxBeforeSurcharge},
		{"Surcharge", c.Surcharge},
		{"Health and education cess", c.Cess},
		{"Total tax", c.TotalTax},
	}
}
