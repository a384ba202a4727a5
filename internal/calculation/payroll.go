package calculation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/pkg/money"
	"github.com/shopspring/decimal"
)

const monthsPerYear = 12

// DefaultPayrollWorkers bounds concurrent payout projections.
const DefaultPayrollWorkers = 8

var ErrWithholdingExceedsPay = errors.New("tax and deductions exceed gross pay")

// ProjectMonth prorates the month for leave without pay, annualizes it to
// estimate the year's tax, withholds a twelfth of that tax and records the
// payout on ms.
func (e *Engine) ProjectMonth(ms *domain.MonthlySalary, deductions DeductionsProvider) (domain.PayoutCalculated, error) {
	key := ms.Key()
	prorated, err := ms.Salary().Prorate(ms.ProrationFactor())
	if err != nil {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: prorate: %w", key, err)
	}
	monthGross, err := prorated.GrossSalary()
	if err != nil {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: %w", key, err)
	}
	annual, err := prorated.Annualize(monthsPerYear)
	if err != nil {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: annualize: %w", key, err)
	}
	annualPerqs, err := ms.Perquisites().Mul(decimal.NewFromInt(monthsPerYear))
	if err != nil {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: %w", key, err)
	}

	income := domain.IncomeSet{
		Salary:      &annual,
		Perquisites: annualPerqs,
		Retirement:  ms.Retirement(),
	}
	c, err := e.Compute(TaxInput{
		TaxYear:    ms.TaxYear(),
		Regime:     ms.Regime(),
		Income:     income,
		Deductions: deductions,
	})
	if err != nil {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: %w", key, err)
	}
	tds, err := c.TotalTax.Div(decimal.NewFromInt(monthsPerYear))
	if err != nil {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: %w", key, err)
	}
	withheld, err := tds.Add(ms.PayrollDeductions())
	if err != nil {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: %w", key, err)
	}
	net, err := monthGross.Sub(withheld)
	if errors.Is(err, money.ErrNegativeResult) {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: gross %s, withheld %s: %w", key, monthGross, withheld, ErrWithholdingExceedsPay)
	}
	if err != nil {
		return domain.PayoutCalculated{}, fmt.Errorf("%s: %w", key, err)
	}
	if err := ms.RecordComputation(monthGross, tds, net); err != nil {
		return domain.PayoutCalculated{}, err
	}
	e.Logger.Debugf("payout %s: factor=%s gross=%s tds=%s net=%s", key, ms.ProrationFactor().StringFixed(4), monthGross, tds, net)
	return domain.PayoutCalculated{
		EmployeeID:     key.EmployeeID,
		OrganisationID: key.OrganisationID,
		TaxYear:        ms.TaxYear(),
		Year:           key.Year,
		Month:          key.Month,
		GrossPay:       monthGross,
		TDS:            tds,
		NetPay:         net,
		At:             nowFunc().UTC(),
	}, nil
}

// PayrollItem is one salary to project in a payroll run.
type PayrollItem struct {
	Salary     *domain.MonthlySalary
	Deductions DeductionsProvider
}

// PayrollResult pairs an item with its outcome. Exactly one of Payout and Err is set.
type PayrollResult struct {
	Salary *domain.MonthlySalary
	Payout *domain.PayoutCalculated
	Err    error
}

// RunPayroll projects every item concurrently with at most workers in flight.
// Results keep the order of items. Items not started before ctx is cancelled
// report the context error.
func (e *Engine) RunPayroll(ctx context.Context, workers int, items []PayrollItem) []PayrollResult {
	if workers <= 0 {
		workers = DefaultPayrollWorkers
	}
	results := make([]PayrollResult, len(items))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i := range items {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			item := items[idx]
			results[idx].Salary = item.Salary

			select {
			case semaphore <- struct{}{}: // Acquire semaphore
			case <-ctx.Done():
				results[idx].Err = ctx.Err()
				return
			}
			defer func() { <-semaphore }() // Release semaphore

			if err := ctx.Err(); err != nil {
				results[idx].Err = err
				return
			}
			payout, err := e.ProjectMonth(item.Salary, item.Deductions)
			if err != nil {
				e.Logger.Warnf("payroll item %d failed: %v", idx, err)
				results[idx].Err = err
				return
			}
			results[idx].Payout = &payout
		}(i)
	}

	wg.Wait()
	return results
}
