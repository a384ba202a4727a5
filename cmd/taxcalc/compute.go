package main

import (
	"fmt"

	"github.com/incometax/taxcalc/internal/output"
	"github.com/spf13/cobra"
)

func newComputeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compute <case.yaml>",
		Short: "Compute tax for a case under its declared regime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.parser.LoadTaxCase(args[0])
			if err != nil {
				return err
			}
			in, err := c.TaxInput()
			if err != nil {
				return err
			}
			comp, err := a.engine.Compute(in)
			if err != nil {
				return fmt.Errorf("failed to compute %s: %w", c.Key(), err)
			}
			r := output.NewComputationReport(c.Key(), comp)
			if rules, err := a.rules.ForYear(c.TaxYear); err == nil {
				r.Assumptions = append(append([]string(nil), r.Assumptions...), output.GenerateAssumptions(c.TaxYear, rules)...)
			}
			return a.render(cmd, r, a.format)
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <case.yaml>",
		Short: "Compute tax under both regimes and recommend the cheaper one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.parser.LoadTaxCase(args[0])
			if err != nil {
				return err
			}
			in, err := c.TaxInput()
			if err != nil {
				return err
			}
			cmp, err := a.engine.CompareRegimes(in)
			if err != nil {
				return fmt.Errorf("failed to compare regimes for %s: %w", c.Key(), err)
			}
			return a.render(cmd, output.NewComparisonReport(c.Key(), cmp), a.format)
		},
	}
}
