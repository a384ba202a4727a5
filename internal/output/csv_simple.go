package output

import (
	"bytes"
	"encoding/csv"
)

// CSVSummarizer writes the computation breakdown, one row per line item.
// A comparison gets one amount column per regime.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string      { return "csv" }
func (c CSVSummarizer) Extension() string { return "csv" }

func (c CSVSummarizer) Format(r *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	switch {
	case r.Comparison != nil:
		if err := w.Write([]string{"Item", "Old", "New"}); err != nil {
			return nil, err
		}
		oldLines, newLines := breakdown(r.Comparison.Old), breakdown(r.Comparison.New)
		for i := range oldLines {
			if err := w.Write([]string{oldLines[i].Label, oldLines[i].Amount.String(), newLines[i].Amount.String()}); err != nil {
				return nil, err
			}
		}
		if err := w.Write([]string{"Recommended", string(r.Comparison.Recommended), r.Comparison.Savings.String()}); err != nil {
			return nil, err
		}
	case r.Computation != nil:
		if err := w.Write([]string{"Item", "Amount"}); err != nil {
			return nil, err
		}
		for _, l := range breakdown(*r.Computation) {
			if err := w.Write([]string{l.Label, l.Amount.String()}); err != nil {
				return nil, err
			}
		}
	default:
		return CSVPayrollExporter{}.Format(r)
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
