package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/internal/logger"
	"github.com/incometax/taxcalc/internal/output"
	"github.com/spf13/cobra"
)

func newRecordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage stored taxation records",
	}

	compute := &cobra.Command{
		Use:   "compute <case.yaml>",
		Short: "Store a case as a taxation record and compute it",
		Long: "Opens a draft record for the case, or replaces the income and regime of the\n" +
			"existing record, then computes and stores the liability.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.parser.LoadTaxCase(args[0])
			if err != nil {
				return err
			}
			income, err := c.Income()
			if err != nil {
				return err
			}
			svc, closeStore, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			key := c.Key()
			_, err = svc.Open(ctx, key, c.Regime, income)
			if errors.Is(err, domain.ErrDuplicateRecord) {
				logger.Log.Info().
					Str("employee", logger.HashEmployeeID(key.EmployeeID)).
					Str("tax_year", key.TaxYear.String()).
					Msg("Record exists, replacing income")
				if _, err = svc.UpdateIncome(ctx, key, income); err == nil {
					_, err = svc.ChangeRegime(ctx, key, c.Regime)
				}
			}
			if err != nil {
				return err
			}

			comp, err := svc.Compute(ctx, key, c.DeductionList())
			if err != nil {
				return err
			}
			return a.render(cmd, output.NewComputationReport(key, comp), a.format)
		},
	}

	finalize := &cobra.Command{
		Use:   "finalize <organisation> <employee> <tax-year>",
		Short: "Finalize a computed record; it can no longer change",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := recordKey(args)
			if err != nil {
				return err
			}
			svc, closeStore, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			rec, err := svc.Finalize(cmd.Context(), key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, rec.Status())
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <organisation> <employee> <tax-year>",
		Short: "Render the stored computation of a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := recordKey(args)
			if err != nil {
				return err
			}
			svc, closeStore, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			rec, err := svc.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			comp, ok := rec.Computation()
			if !ok {
				return fmt.Errorf("%s is %s and has no computation", key, rec.Status())
			}
			return a.render(cmd, output.NewComputationReport(key, comp), a.format)
		},
	}

	list := &cobra.Command{
		Use:   "list <organisation> <tax-year>",
		Short: "List an organisation's records for a tax year",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := domain.ParseTaxYear(args[1])
			if err != nil {
				return err
			}
			svc, closeStore, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			recs, err := svc.List(cmd.Context(), args[0], year)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMPLOYEE\tREGIME\tSTATUS\tTOTAL TAX")
			for _, rec := range recs {
				tax := "-"
				if c, ok := rec.Computation(); ok {
					tax = output.FormatCurrency(c.TotalTax)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.Key().EmployeeID, rec.Regime(), rec.Status(), tax)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(compute, finalize, show, list)
	return cmd
}

func recordKey(args []string) (domain.RecordKey, error) {
	year, err := domain.ParseTaxYear(args[2])
	if err != nil {
		return domain.RecordKey{}, err
	}
	return domain.RecordKey{OrganisationID: args[0], EmployeeID: args[1], TaxYear: year}, nil
}
