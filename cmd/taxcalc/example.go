package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "example <file>",
		Short: "Write an example tax case to start from",
		Long:  "Writes an example case for the current tax year, or the latest year the rule book covers.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := a.defaultYear()
			if err := a.parser.SaveTaxCase(a.parser.CreateExampleTaxCase(year), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example tax case for %s written to %s\n", year, args[0])
			return nil
		},
	}
}
