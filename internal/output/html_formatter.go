package output

import (
	"bytes"
	_ "embed"
	"html/template"
)

// HTMLFormatter produces a standalone HTML statement.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string      { return "html" }
func (h HTMLFormatter) Extension() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":      FormatCurrency,
	"pct":       FormatPercentage,
	"breakdown": breakdown,
	"analyze":   Analyze,
	"recommend": AnalyzeComparison,
	"pair": func(a, b []line) [][2]line {
		out := make([][2]line, len(a))
		for i := range a {
			out[i] = [2]line{a[i], b[i]}
		}
		return out
	},
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
