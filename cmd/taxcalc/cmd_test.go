package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../test/testdata"

// run executes the CLI in-process against an in-memory store.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TAXCALC_RULES_FILE", "")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompareCommand(t *testing.T) {
	out, err := run(t, "compare", filepath.Join(testdata, "salaried_12l.yaml"), "--format", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Recommended: new")
	assert.Contains(t, out, "INR 49,400.00")
}

func TestComputeCommand(t *testing.T) {
	out, err := run(t, "compute", filepath.Join(testdata, "salaried_12l.yaml"), "-f", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Total tax,132600.00")
}

func TestComputeCommand_UnknownFormat(t *testing.T) {
	_, err := run(t, "compute", filepath.Join(testdata, "salaried_12l.yaml"), "-f", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Try one of:")
}

func TestComputeCommand_MissingFile(t *testing.T) {
	_, err := run(t, "compute", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestPayslipCommand(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "payslip", filepath.Join(testdata, "payroll_june.yaml"), "-o", dir)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	out, err := run(t, "payslip", filepath.Join(testdata, "payroll_june.yaml"), "-f", "payroll-csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4, "header + 3 employees")
}

func TestRecordComputeCommand(t *testing.T) {
	out, err := run(t, "record", "compute", filepath.Join(testdata, "salaried_12l.yaml"), "-f", "console-lite")
	require.NoError(t, err)
	assert.Contains(t, out, "old regime")
	assert.Contains(t, out, "INR 1,32,600.00")
}

func TestRecordShowCommand_NotFound(t *testing.T) {
	_, err := run(t, "record", "show", "ACME", "E-404", "2024-25")
	assert.Error(t, err)
}

func TestPayoutCommand_BadPeriod(t *testing.T) {
	_, err := run(t, "payout", "approve", "ACME", "E-1", "June")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM")
}

func TestRulesDumpAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	_, err := run(t, "rules", "dump", path)
	require.NoError(t, err)

	out, err := run(t, "rules", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (4 tax years)")

	out, err = run(t, "--rules", path, "rules", "show", "2024-25")
	require.NoError(t, err)
	assert.Contains(t, out, "Rules for financial year 2024-25")
}

func TestExampleCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.yaml")
	_, err := run(t, "example", path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err := run(t, "compare", path, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"recommended"`)
}
