package main

import (
	"fmt"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect, export or validate statutory rule books",
	}

	dump := &cobra.Command{
		Use:   "dump [file]",
		Short: "Write the active rule book as YAML to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.parser.SaveRuleBook(a.rules, args[0])
			}
			data, err := yaml.Marshal(a.rules)
			if err != nil {
				return fmt.Errorf("failed to marshal rule book: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a rule book file loads and validates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rb, err := a.parser.LoadRuleBook(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d tax years)\n", args[0], len(rb.Years))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show [tax-year]",
		Short: "Describe the limits and rates of one tax year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := a.defaultYear()
			if len(args) == 1 {
				y, err := domain.ParseTaxYear(args[0])
				if err != nil {
					return err
				}
				year = y
			}
			rules, err := a.rules.ForYear(year)
			if err != nil {
				return fmt.Errorf("%w (configured: %v)", err, a.rules.SupportedYears())
			}
			for _, line := range output.GenerateAssumptions(year, rules) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.AddCommand(dump, validate, show)
	return cmd
}
