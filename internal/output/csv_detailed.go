package output

import (
	"bytes"
	"encoding/csv"
	"sort"
)

// CSVPayrollExporter writes one row per payout, ordered by period then employee.
type CSVPayrollExporter struct{}

func (c CSVPayrollExporter) Name() string      { return "payroll-csv" }
func (c CSVPayrollExporter) Extension() string { return "csv" }

func (c CSVPayrollExporter) Format(r *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Employee", "Period", "Regime", "WorkingDays", "LWPDays", "Gross", "TDS", "PayrollDeductions", "Net", "Status", "Error"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	payouts := append([]PayoutLine(nil), r.Payouts...)
	sort.SliceStable(payouts, func(i, j int) bool {
		if payouts[i].Period != payouts[j].Period {
			return payouts[i].Period < payouts[j].Period
		}
		return payouts[i].EmployeeID < payouts[j].EmployeeID
	})
	for _, p := range payouts {
		row := []string{
			p.EmployeeID,
			p.Period,
			string(p.Regime),
			intToString(p.WorkingDays),
			intToString(p.LWPDays),
			p.Gross.String(),
			p.TDS.String(),
			p.PayrollDeductions.String(),
			p.Net.String(),
			string(p.Status),
			p.Error,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
