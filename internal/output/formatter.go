package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned for a format name no formatter answers to.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(r *Report) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
	// Extension is the file extension used when the output is written to disk.
	Extension() string
}

// FormatterFunc adapter to allow ordinary functions to act as a Formatter.
type FormatterFunc struct {
	ID  string
	Ext string
	F   func(*Report) ([]byte, error)
}

func (ff FormatterFunc) Format(r *Report) ([]byte, error) { return ff.F(r) }
func (ff FormatterFunc) Name() string                     { return ff.ID }
func (ff FormatterFunc) Extension() string                { return ff.Ext }

// WriteFormatted runs a formatter and writes output to a timestamped file in dir.
func WriteFormatted(f Formatter, r *Report, dir string) (string, error) {
	data, err := f.Format(r)
	if err != nil {
		return "", err
	}
	stamp := r.GeneratedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	filename := filepath.Join(dir, fmt.Sprintf("tax_report_%s.%s", stamp.Format("20060102_150405"), f.Extension()))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// builtInFormatters stores available formatters.
var builtInFormatters = []Formatter{
	ConsoleVerboseFormatter{},
	ConsoleFormatter{},
	CSVSummarizer{},
	CSVPayrollExporter{},
	HTMLFormatter{},
	JSONFormatter{},
	PDFFormatter{},
}

// GetFormatterByName fetches a registered formatter.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"console-verbose": "console",
	"verbose":         "console",
	"text":            "console",
	"summary":         "console-lite",
	"csv-summary":     "csv",
	"csv-payroll":     "payroll-csv",
	"html-report":     "html",
	"json-pretty":     "json",
	"payslip":         "pdf",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup resolves a format name or reports the alternatives.
func Lookup(format string) (Formatter, error) {
	if f := GetFormatterByName(format); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
		strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
}
