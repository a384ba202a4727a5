package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ConsoleVerboseFormatter renders the full statement via the pluggable interface.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string      { return "console" }
func (c ConsoleVerboseFormatter) Extension() string { return "txt" }

func (c ConsoleVerboseFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 72))
	fmt.Fprintln(&buf, "DETAILED INCOME TAX STATEMENT")
	fmt.Fprintln(&buf, strings.Repeat("=", 72))
	if r.Title != "" {
		fmt.Fprintln(&buf, r.Title)
	}
	if r.EmployeeID != "" {
		fmt.Fprintf(&buf, "Employee:     %s\n", r.EmployeeID)
		fmt.Fprintf(&buf, "Organisation: %s\n", r.OrganisationID)
	}
	if !r.TaxYear.IsZero() {
		fmt.Fprintf(&buf, "Tax year:     %s\n", r.TaxYear)
	}
	fmt.Fprintln(&buf)

	if len(r.Assumptions) > 0 {
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range r.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
		fmt.Fprintln(&buf)
	}

	if c := r.Computation; c != nil {
		fmt.Fprintf(&buf, "COMPUTATION (%s regime)\n", strings.ToUpper(string(c.Regime)))
		fmt.Fprintln(&buf, strings.Repeat("-", 50))
		for _, l := range breakdown(*c) {
			fmt.Fprintf(&buf, "  %-32s %22s\n", l.Label, FormatCurrency(l.Amount))
		}
		a := Analyze(*c)
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "  %-32s %22s\n", "Effective rate", FormatPercentage(a.EffectiveRate))
		fmt.Fprintf(&buf, "  %-32s %22s\n", "Monthly tax", FormatCurrency(a.MonthlyTax))
		fmt.Fprintln(&buf)
	}

	if cmp := r.Comparison; cmp != nil {
		writeComparison(&buf, r)
	}

	if len(r.Payouts) > 0 {
		fmt.Fprintln(&buf, "PAYROLL")
		fmt.Fprintln(&buf, strings.Repeat("-", 50))
		fmt.Fprintf(&buf, "  %-10s %-8s %-4s %6s %20s %16s %20s  %s\n", "Employee", "Period", "Reg", "Days", "Gross", "TDS", "Net", "Status")
		for _, p := range r.Payouts {
			if p.Error != "" {
				fmt.Fprintf(&buf, "  %-10s %-8s FAILED: %s\n", p.EmployeeID, p.Period, p.Error)
				continue
			}
			fmt.Fprintf(&buf, "  %-10s %-8s %-4s %3d/%-2d %20s %16s %20s  %s\n",
				p.EmployeeID, p.Period, p.Regime, p.WorkingDays-p.LWPDays, p.WorkingDays,
				FormatCurrency(p.Gross), FormatCurrency(p.TDS), FormatCurrency(p.Net), p.Status)
		}
		fmt.Fprintln(&buf)
	}
	return buf.Bytes(), nil
}

func writeComparison(w io.Writer, r *Report) {
	cmp := r.Comparison
	fmt.Fprintln(w, "REGIME COMPARISON")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "  %-32s %22s %22s\n", "", "OLD", "NEW")
	oldLines, newLines := breakdown(cmp.Old), breakdown(cmp.New)
	for i := range oldLines {
		fmt.Fprintf(w, "  %-32s %22s %22s\n", oldLines[i].Label, FormatCurrency(oldLines[i].Amount), FormatCurrency(newLines[i].Amount))
	}
	rec := AnalyzeComparison(*cmp)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "RECOMMENDATION: %s regime saves %s (%s)\n", strings.ToUpper(string(rec.Regime)), FormatCurrency(rec.Savings), FormatPercentage(rec.SavingsPercent))
	fmt.Fprintln(w)
}
