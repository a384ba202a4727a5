// Package service runs the taxation and payroll use cases against a
// Repository and publishes the resulting events.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/incometax/taxcalc/internal/calculation"
	"github.com/incometax/taxcalc/internal/domain"
	"github.com/incometax/taxcalc/internal/store"
)

// TaxationService coordinates records, the engine and the event publisher.
type TaxationService struct {
	repo    store.Repository
	engine  *calculation.Engine
	pub     Publisher
	logger  calculation.Logger
	workers int
}

func NewTaxationService(repo store.Repository, engine *calculation.Engine, pub Publisher) *TaxationService {
	if pub == nil {
		pub = &RecordingPublisher{}
	}
	return &TaxationService{
		repo:    repo,
		engine:  engine,
		pub:     pub,
		logger:  calculation.NopLogger{},
		workers: calculation.DefaultPayrollWorkers,
	}
}

// SetLogger sets a logger (nil resets to NopLogger).
func (s *TaxationService) SetLogger(l calculation.Logger) {
	if l == nil {
		s.logger = calculation.NopLogger{}
		return
	}
	s.logger = l
}

// SetWorkers bounds payroll concurrency; values below one use the default.
func (s *TaxationService) SetWorkers(n int) {
	if n < 1 {
		n = calculation.DefaultPayrollWorkers
	}
	s.workers = n
}

// publish reports an event. The state change is already stored, so a publish
// failure is logged and not returned.
func (s *TaxationService) publish(ctx context.Context, ev domain.Event) {
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.logger.Warnf("publish %s failed: %v", ev.EventName(), err)
	}
}

// Open creates a draft record carrying income.
func (s *TaxationService) Open(ctx context.Context, key domain.RecordKey, regime domain.Regime, income domain.IncomeSet) (*domain.TaxationRecord, error) {
	rec, err := domain.NewTaxationRecord(key, regime)
	if err != nil {
		return nil, err
	}
	if err := rec.ReplaceIncome(income); err != nil {
		return nil, err
	}
	if err := s.repo.CreateTaxation(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *TaxationService) Get(ctx context.Context, key domain.RecordKey) (*domain.TaxationRecord, error) {
	return s.repo.GetTaxation(ctx, key)
}

// List returns an organisation's records for a tax year.
func (s *TaxationService) List(ctx context.Context, organisationID string, year domain.TaxYear) ([]*domain.TaxationRecord, error) {
	return s.repo.ListTaxations(ctx, organisationID, year)
}

// UpdateIncome replaces a record's income and returns it to draft.
func (s *TaxationService) UpdateIncome(ctx context.Context, key domain.RecordKey, income domain.IncomeSet) (*domain.TaxationRecord, error) {
	return s.repo.UpdateTaxation(ctx, key, func(rec *domain.TaxationRecord) error {
		return rec.ReplaceIncome(income)
	})
}

// Compute computes and stores the liability under the record's regime.
func (s *TaxationService) Compute(ctx context.Context, key domain.RecordKey, deductions calculation.DeductionsProvider) (domain.TaxComputation, error) {
	var ev domain.TaxationCalculated
	rec, err := s.repo.UpdateTaxation(ctx, key, func(rec *domain.TaxationRecord) error {
		var err error
		ev, err = s.engine.ComputeRecord(rec, deductions)
		return err
	})
	if err != nil {
		return domain.TaxComputation{}, err
	}
	s.publish(ctx, ev)
	c, _ := rec.Computation()
	return c, nil
}

// Compare computes both regimes for a record without changing it.
func (s *TaxationService) Compare(ctx context.Context, key domain.RecordKey, deductions calculation.DeductionsProvider) (domain.RegimeComparison, error) {
	rec, err := s.repo.GetTaxation(ctx, key)
	if err != nil {
		return domain.RegimeComparison{}, err
	}
	return s.engine.CompareRegimes(calculation.TaxInput{
		TaxYear:    key.TaxYear,
		Regime:     rec.Regime(),
		Income:     rec.Income(),
		Deductions: deductions,
	})
}

// ChangeRegime switches a record's regime. No event is published when the
// regime is unchanged.
func (s *TaxationService) ChangeRegime(ctx context.Context, key domain.RecordKey, to domain.Regime) (*domain.TaxationRecord, error) {
	var ev *domain.TaxRegimeChanged
	rec, err := s.repo.UpdateTaxation(ctx, key, func(rec *domain.TaxationRecord) error {
		var err error
		ev, err = rec.ChangeRegime(to)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ev != nil {
		s.publish(ctx, *ev)
	}
	return rec, nil
}

// Finalize locks a computed record.
func (s *TaxationService) Finalize(ctx context.Context, key domain.RecordKey) (*domain.TaxationRecord, error) {
	return s.repo.UpdateTaxation(ctx, key, func(rec *domain.TaxationRecord) error {
		return rec.Finalize()
	})
}

// RunMonthlyPayroll projects every item, stores each payout and publishes it.
// A month already on file is replaced unless it has been approved.
// Failures are reported per item; the error return is reserved for a
// cancelled context.
func (s *TaxationService) RunMonthlyPayroll(ctx context.Context, items []calculation.PayrollItem) ([]calculation.PayrollResult, error) {
	results := s.engine.RunPayroll(ctx, s.workers, items)
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if err := s.savePayout(ctx, r.Salary); err != nil {
			r.Err = err
			r.Payout = nil
			continue
		}
		s.publish(ctx, *r.Payout)
	}
	return results, ctx.Err()
}

// savePayout stores a projected month. A stored month that has not been
// approved is replaced by the new projection.
func (s *TaxationService) savePayout(ctx context.Context, ms *domain.MonthlySalary) error {
	return s.repo.ReplaceMonthlySalary(ctx, ms, replaceable)
}

func replaceable(stored *domain.MonthlySalary) error {
	switch st := stored.Status(); st {
	case domain.PayrollNotComputed, domain.PayrollComputed, domain.PayrollRejected:
		return nil
	default:
		return fmt.Errorf("%s: recompute from %s: %w", stored.Key(), st, domain.ErrInvalidTransition)
	}
}

func (s *TaxationService) GetPayout(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error) {
	return s.repo.GetMonthlySalary(ctx, key)
}

// ListPayouts returns an organisation's payouts for one calendar month.
func (s *TaxationService) ListPayouts(ctx context.Context, organisationID string, year int, month time.Month) ([]*domain.MonthlySalary, error) {
	return s.repo.ListMonthlySalaries(ctx, organisationID, year, month)
}

func (s *TaxationService) ApprovePayout(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error) {
	return s.repo.UpdateMonthlySalary(ctx, key, func(ms *domain.MonthlySalary) error { return ms.Approve() })
}

func (s *TaxationService) RejectPayout(ctx context.Context, key domain.PayrollKey, reason string) (*domain.MonthlySalary, error) {
	return s.repo.UpdateMonthlySalary(ctx, key, func(ms *domain.MonthlySalary) error { return ms.Reject(reason) })
}

func (s *TaxationService) MarkSalaryPaid(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error) {
	return s.repo.UpdateMonthlySalary(ctx, key, func(ms *domain.MonthlySalary) error { return ms.MarkSalaryPaid() })
}

func (s *TaxationService) MarkTDSPaid(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error) {
	return s.repo.UpdateMonthlySalary(ctx, key, func(ms *domain.MonthlySalary) error { return ms.MarkTDSPaid() })
}
