package main

import (
	"context"
	"fmt"

	"github.com/incometax/taxcalc/internal/calculation"
	"github.com/incometax/taxcalc/internal/config"
	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/internal/logger"
	"github.com/incometax/taxcalc/internal/output"
	"github.com/incometax/taxcalc/internal/service"
	"github.com/incometax/taxcalc/internal/store"
	"github.com/spf13/cobra"
)

// app is the state shared by every command, built once the flags are parsed.
type app struct {
	settings  config.Settings
	parser    *config.InputParser
	rules     *domain.RuleBook
	engine    *calculation.Engine
	format    string
	outputDir string
	rulesFile string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	a := &app{parser: config.NewInputParser()}

	root := &cobra.Command{
		Use:           "taxcalc",
		Short:         "Indian income tax and payroll calculator",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVarP(&a.format, "format", "f", "console", "output format (console, console-lite, csv, payroll-csv, html, json, pdf)")
	root.PersistentFlags().StringVarP(&a.outputDir, "output-dir", "o", "", "write the report to a file in this directory instead of stdout")
	root.PersistentFlags().StringVar(&a.rulesFile, "rules", "", "rule book YAML (defaults to TAXCALC_RULES_FILE, then the built-in rules)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newComputeCmd(a),
		newCompareCmd(a),
		newPayslipCmd(a),
		newPayoutCmd(a),
		newRecordCmd(a),
		newRulesCmd(a),
		newExampleCmd(a),
	)
	return root
}

func (a *app) init() error {
	s, err := config.LoadSettings()
	if err != nil {
		return err
	}
	a.settings = s

	if s.LogFormat == "json" {
		logger.SetJSON()
	}
	level := s.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger.SetLevel(level)

	rulesFile := a.rulesFile
	if rulesFile == "" {
		rulesFile = s.RulesFile
	}
	if rulesFile == "" {
		a.rules = domain.DefaultRuleBook()
	} else {
		rb, err := a.parser.LoadRuleBook(rulesFile)
		if err != nil {
			return err
		}
		a.rules = rb
		logger.Log.Debug().Str("file", rulesFile).Msg("Loaded rule book")
	}

	a.engine = calculation.NewEngine(a.rules)
	a.engine.SetLogger(logger.Calculation("engine"))
	return nil
}

// defaultYear is the current tax year, or the latest one the rule book covers.
func (a *app) defaultYear() domain.TaxYear {
	year := domain.CurrentTaxYear()
	if _, err := a.rules.ForYear(year); err != nil {
		if years := a.rules.SupportedYears(); len(years) > 0 {
			year = years[len(years)-1]
		}
	}
	return year
}

// openService wires the service to Postgres when DATABASE_URL is set and to
// an in-memory store otherwise. The returned func releases the pool.
func (a *app) openService(ctx context.Context) (*service.TaxationService, func(), error) {
	var (
		repo    store.Repository
		cleanup = func() {}
	)
	if a.settings.DatabaseURL == "" {
		logger.Log.Warn().Msg("DATABASE_URL not set, records are kept in memory for this run only")
		repo = store.NewMemoryStore()
	} else {
		pool, err := store.Connect(ctx, a.settings.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		repo = pg
		cleanup = pool.Close
	}

	svc := service.NewTaxationService(repo, a.engine, service.NewLogPublisher())
	svc.SetLogger(logger.Calculation("service"))
	svc.SetWorkers(a.settings.PayrollWorkers)
	return svc, cleanup, nil
}

// render writes the report to stdout, or to a file when an output directory
// is set. PDF output always goes to a file.
func (a *app) render(cmd *cobra.Command, r *output.Report, format string) error {
	f, err := output.Lookup(format)
	if err != nil {
		return err
	}
	dir := a.outputDir
	if dir == "" && f.Extension() == "pdf" {
		dir = "."
	}
	if dir != "" {
		path, err := output.WriteFormatted(f, r, dir)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Log.Info().Str("file", path).Str("format", f.Name()).Msg("Report written")
		return nil
	}
	data, err := f.Format(r)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
