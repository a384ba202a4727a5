package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/internal/logger"
	"github.com/incometax/taxcalc/internal/output"
	"github.com/spf13/cobra"
)

func newPayslipCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "payslip <batch.yaml>",
		Short: "Run a monthly payroll batch and render payslips",
		Long: "Projects each employee's month (gross pay after leave without pay, TDS and net pay),\n" +
			"stores the payouts and renders them. PDF payslips are the default output.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := a.parser.LoadPayrollBatch(args[0])
			if err != nil {
				return err
			}
			items, err := batch.Items()
			if err != nil {
				return err
			}

			svc, closeStore, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			results, err := svc.RunMonthlyPayroll(cmd.Context(), items)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					logger.Log.Warn().
						Str("employee", logger.HashEmployeeID(r.Salary.Key().EmployeeID)).
						Err(r.Err).
						Msg("Payout failed")
				}
			}

			period := domain.PayrollKey{Year: batch.Year, Month: time.Month(batch.Month)}
			r := output.NewPayrollReport(batch.OrganisationID, period.TaxYear(), output.PayoutLines(results))
			format := a.format
			if !cmd.Flags().Changed("format") {
				format = "pdf"
			}
			if err := a.render(cmd, r, format); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d payouts failed", failed, len(results))
			}
			return nil
		},
	}
}

func newPayoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Approve, reject, pay or list stored monthly payouts",
	}

	var reason string
	reject := &cobra.Command{
		Use:   "reject <organisation> <employee> <YYYY-MM>",
		Short: "Reject a computed payout so it can be recomputed",
		Args:  cobra.ExactArgs(3),
		RunE: payoutAction(a, func(cmd *cobra.Command, key domain.PayrollKey, svc payoutService) (*domain.MonthlySalary, error) {
			return svc.RejectPayout(cmd.Context(), key, reason)
		}),
	}
	reject.Flags().StringVar(&reason, "reason", "", "why the payout was rejected")
	_ = reject.MarkFlagRequired("reason")

	var salary, tds bool
	pay := &cobra.Command{
		Use:   "pay <organisation> <employee> <YYYY-MM>",
		Short: "Record salary and/or TDS payment for an approved payout",
		Args:  cobra.ExactArgs(3),
		RunE: payoutAction(a, func(cmd *cobra.Command, key domain.PayrollKey, svc payoutService) (*domain.MonthlySalary, error) {
			if !salary && !tds {
				return nil, fmt.Errorf("at least one of --salary or --tds is required")
			}
			var (
				ms  *domain.MonthlySalary
				err error
			)
			if salary {
				if ms, err = svc.MarkSalaryPaid(cmd.Context(), key); err != nil {
					return nil, err
				}
			}
			if tds {
				if ms, err = svc.MarkTDSPaid(cmd.Context(), key); err != nil {
					return nil, err
				}
			}
			return ms, nil
		}),
	}
	pay.Flags().BoolVar(&salary, "salary", false, "mark the net salary as paid")
	pay.Flags().BoolVar(&tds, "tds", false, "mark the TDS as deposited")

	approve := &cobra.Command{
		Use:   "approve <organisation> <employee> <YYYY-MM>",
		Short: "Approve a computed payout",
		Args:  cobra.ExactArgs(3),
		RunE: payoutAction(a, func(cmd *cobra.Command, key domain.PayrollKey, svc payoutService) (*domain.MonthlySalary, error) {
			return svc.ApprovePayout(cmd.Context(), key)
		}),
	}

	list := &cobra.Command{
		Use:   "list <organisation> <YYYY-MM>",
		Short: "Render every stored payout of a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parsePeriod(args[1])
			if err != nil {
				return err
			}
			svc, closeStore, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			payouts, err := svc.ListPayouts(cmd.Context(), args[0], year, month)
			if err != nil {
				return err
			}
			lines := make([]output.PayoutLine, 0, len(payouts))
			for _, ms := range payouts {
				lines = append(lines, output.PayoutLineOf(ms))
			}
			period := domain.PayrollKey{Year: year, Month: month}
			return a.render(cmd, output.NewPayrollReport(args[0], period.TaxYear(), lines), a.format)
		},
	}

	cmd.AddCommand(approve, reject, pay, list)
	return cmd
}

// payoutService is the slice of the taxation service the payout commands use.
type payoutService interface {
	ApprovePayout(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error)
	RejectPayout(ctx context.Context, key domain.PayrollKey, reason string) (*domain.MonthlySalary, error)
	MarkSalaryPaid(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error)
	MarkTDSPaid(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error)
}

func payoutAction(a *app, fn func(*cobra.Command, domain.PayrollKey, payoutService) (*domain.MonthlySalary, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		year, month, err := parsePeriod(args[2])
		if err != nil {
			return err
		}
		key := domain.PayrollKey{OrganisationID: args[0], EmployeeID: args[1], Year: year, Month: month}
		if err := key.Validate(); err != nil {
			return err
		}

		svc, closeStore, err := a.openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		ms, err := fn(cmd, key, svc)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, ms.Status())
		return nil
	}
}

// parsePeriod reads a calendar month written as YYYY-MM.
func parsePeriod(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("period %q is not YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}
