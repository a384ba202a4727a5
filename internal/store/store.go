// Package store persists taxation records and monthly salaries as documents.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/incometax/taxcalc/internal/domain"
)

// ErrNotFound is returned when no document exists for a key.
var ErrNotFound = errors.New("store: not found")

// Repository is the persistence boundary. Update* load the current document,
// apply fn and save the result while holding the key; if fn fails nothing is
// written. Create and Save fail with domain.ErrDuplicateRecord when the key
// already exists. ReplaceMonthlySalary inserts ms, or overwrites the stored
// month when guard accepts it; guard runs while the key is held.
type Repository interface {
	CreateTaxation(ctx context.Context, rec *domain.TaxationRecord) error
	GetTaxation(ctx context.Context, key domain.RecordKey) (*domain.TaxationRecord, error)
	UpdateTaxation(ctx context.Context, key domain.RecordKey, fn func(*domain.TaxationRecord) error) (*domain.TaxationRecord, error)
	ListTaxations(ctx context.Context, organisationID string, year domain.TaxYear) ([]*domain.TaxationRecord, error)

	SaveMonthlySalary(ctx context.Context, ms *domain.MonthlySalary) error
	GetMonthlySalary(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error)
	UpdateMonthlySalary(ctx context.Context, key domain.PayrollKey, fn func(*domain.MonthlySalary) error) (*domain.MonthlySalary, error)
	ReplaceMonthlySalary(ctx context.Context, ms *domain.MonthlySalary, guard func(stored *domain.MonthlySalary) error) error
	ListMonthlySalaries(ctx context.Context, organisationID string, year int, month time.Month) ([]*domain.MonthlySalary, error)
	DeleteMonthlySalary(ctx context.Context, key domain.PayrollKey) error
}
