package output

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFFormatter renders a computation statement, and one payslip page per payout.
type PDFFormatter struct{}

func (p PDFFormatter) Name() string      { return "pdf" }
func (p PDFFormatter) Extension() string { return "pdf" }

func (p PDFFormatter) Format(r *Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Title, false)

	if r.Computation != nil || r.Comparison != nil || len(r.Payouts) == 0 {
		pdf.AddPage()
		pdfHeader(pdf, r.Title, r)
		if c := r.Computation; c != nil {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Cell(0, 8, fmt.Sprintf("Computation (%s regime)", c.Regime))
			pdf.Ln(9)
			pdf.SetFont("Helvetica", "", 10)
			for _, l := range breakdown(*c) {
				pdf.CellFormat(100, 6, l.Label, "B", 0, "L", false, 0, "")
				pdf.CellFormat(60, 6, FormatCurrency(l.Amount), "B", 1, "R", false, 0, "")
			}
			pdf.Ln(4)
		}
		if cmp := r.Comparison; cmp != nil {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Cell(0, 8, "Regime comparison")
			pdf.Ln(9)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(80, 6, "", "B", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, "Old", "B", 0, "R", false, 0, "")
			pdf.CellFormat(50, 6, "New", "B", 1, "R", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			oldLines, newLines := breakdown(cmp.Old), breakdown(cmp.New)
			for i := range oldLines {
				pdf.CellFormat(80, 6, oldLines[i].Label, "B", 0, "L", false, 0, "")
				pdf.CellFormat(50, 6, FormatCurrency(oldLines[i].Amount), "B", 0, "R", false, 0, "")
				pdf.CellFormat(50, 6, FormatCurrency(newLines[i].Amount), "B", 1, "R", false, 0, "")
			}
			rec := AnalyzeComparison(*cmp)
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "B", 11)
			pdf.Cell(0, 8, fmt.Sprintf("Recommended: %s regime, saving %s", rec.Regime, FormatCurrency(rec.Savings)))
			pdf.Ln(10)
		}
	}

	for _, po := range r.Payouts {
		pdf.AddPage()
		pdfHeader(pdf, "Payslip", r)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", po.EmployeeID))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Period: %s", po.Period))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Days paid: %d of %d (LWP %d)", po.WorkingDays-po.LWPDays, po.WorkingDays, po.LWPDays))
		pdf.Ln(10)
		if po.Error != "" {
			pdf.Cell(0, 8, "Not computed: "+po.Error)
			pdf.Ln(7)
			continue
		}
		pdf.Cell(0, 8, fmt.Sprintf("Gross: %s", FormatCurrency(po.Gross)))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("TDS: %s", FormatCurrency(po.TDS)))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Other deductions: %s", FormatCurrency(po.PayrollDeductions)))
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Net: %s", FormatCurrency(po.Net)))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfHeader(pdf *gofpdf.Fpdf, title string, r *Report) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	if r.OrganisationID != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Organisation: %s", r.OrganisationID))
		pdf.Ln(6)
	}
	if r.EmployeeID != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Employee: %s", r.EmployeeID))
		pdf.Ln(6)
	}
	if !r.TaxYear.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Financial year: %s", r.TaxYear))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}
