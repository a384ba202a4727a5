package output

import (
	"bytes"
	"fmt"
)

// ConsoleFormatter provides a concise console summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console-lite" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "INCOME TAX SUMMARY")
	fmt.Fprintln(&buf, "================================")
	if r.EmployeeID != "" {
		fmt.Fprintf(&buf, "Employee: %s  Organisation: %s  Year: %s\n", r.EmployeeID, r.OrganisationID, r.TaxYear)
	}
	if c := r.Computation; c != nil {
		a := Analyze(*c)
		fmt.Fprintf(&buf, "%s regime: Taxable=%s Tax=%s Effective=%s Monthly=%s\n",
			c.Regime, FormatCurrency(c.TaxableIncome), FormatCurrency(c.TotalTax),
			FormatPercentage(a.EffectiveRate), FormatCurrency(a.MonthlyTax))
	}
	if cmp := r.Comparison; cmp != nil {
		fmt.Fprintf(&buf, "old: Tax=%s\n", FormatCurrency(cmp.Old.TotalTax))
		fmt.Fprintf(&buf, "new: Tax=%s\n", FormatCurrency(cmp.New.TotalTax))
		rec := AnalyzeComparison(*cmp)
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Recommended: %s (saves %s / %s)\n", rec.Regime, FormatCurrency(rec.Savings), FormatPercentage(rec.SavingsPercent))
	}
	for _, p := range r.Payouts {
		if p.Error != "" {
			fmt.Fprintf(&buf, "%s %s: FAILED %s\n", p.EmployeeID, p.Period, p.Error)
			continue
		}
		fmt.Fprintf(&buf, "%s %s: Gross=%s TDS=%s Net=%s [%s]\n",
			p.EmployeeID, p.Period, FormatCurrency(p.Gross), FormatCurrency(p.TDS), FormatCurrency(p.Net), p.Status)
	}
	return buf.Bytes(), nil
}
