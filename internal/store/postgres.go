package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/incometax/taxcalc/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// PostgresStore keeps documents in jsonb columns next to their key columns.
// Updates take a row lock with SELECT ... FOR UPDATE.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// notFound maps pgx.ErrNoRows to ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func (s *PostgresStore) CreateTaxation(ctx context.Context, rec *domain.TaxationRecord) error {
	doc := rec.ToDocument()
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
    INSERT INTO taxation_records (id, employee_id, organisation_id, tax_year, status, document, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
  `, doc.ID, doc.EmployeeID, doc.OrganisationID, doc.TaxYear.String(), string(doc.Status), data, doc.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", rec.Key(), domain.ErrDuplicateRecord)
	}
	return err
}

func (s *PostgresStore) GetTaxation(ctx context.Context, key domain.RecordKey) (*domain.TaxationRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
    SELECT document FROM taxation_records
    WHERE employee_id = $1 AND organisation_id = $2 AND tax_year = $3
  `, key.EmployeeID, key.OrganisationID, key.TaxYear.String()).Scan(&data)
	if err != nil {
		return nil, notFound(err, "taxation "+key.String())
	}
	return decodeTaxation(data)
}

func (s *PostgresStore) UpdateTaxation(ctx context.Context, key domain.RecordKey, fn func(*domain.TaxationRecord) error) (*domain.TaxationRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var data []byte
	err = tx.QueryRow(ctx, `
    SELECT document FROM taxation_records
    WHERE employee_id = $1 AND organisation_id = $2 AND tax_year = $3
    FOR UPDATE
  `, key.EmployeeID, key.OrganisationID, key.TaxYear.String()).Scan(&data)
	if err != nil {
		return nil, notFound(err, "taxation "+key.String())
	}
	rec, err := decodeTaxation(data)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	doc := rec.ToDocument()
	if data, err = json.Marshal(doc); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE taxation_records SET status = $2, document = $3, updated_at = $4
    WHERE id = $1
  `, doc.ID, string(doc.Status), data, doc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *PostgresStore) ListTaxations(ctx context.Context, organisationID string, year domain.TaxYear) ([]*domain.TaxationRecord, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT document FROM taxation_records
    WHERE organisation_id = $1 AND tax_year = $2
    ORDER BY employee_id
  `, organisationID, year.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TaxationRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := decodeTaxation(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveMonthlySalary(ctx context.Context, ms *domain.MonthlySalary) error {
	doc := ms.ToDocument()
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	k := doc.Key
	_, err = s.pool.Exec(ctx, `
    INSERT INTO monthly_salaries (id, employee_id, organisation_id, year, month, status, document, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
  `, doc.ID, k.EmployeeID, k.OrganisationID, k.Year, int(k.Month), string(doc.Status), data, doc.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", k, domain.ErrDuplicateRecord)
	}
	return err
}

func (s *PostgresStore) GetMonthlySalary(ctx context.Context, key domain.PayrollKey) (*domain.MonthlySalary, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
    SELECT document FROM monthly_salaries
    WHERE employee_id = $1 AND organisation_id = $2 AND year = $3 AND month = $4
  `, key.EmployeeID, key.OrganisationID, key.Year, int(key.Month)).Scan(&data)
	if err != nil {
		return nil, notFound(err, "monthly salary "+key.String())
	}
	return decodeMonthlySalary(data)
}

func (s *PostgresStore) UpdateMonthlySalary(ctx context.Context, key domain.PayrollKey, fn func(*domain.MonthlySalary) error) (*domain.MonthlySalary, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var data []byte
	err = tx.QueryRow(ctx, `
    SELECT document FROM monthly_salaries
    WHERE employee_id = $1 AND organisation_id = $2 AND year = $3 AND month = $4
    FOR UPDATE
  `, key.EmployeeID, key.OrganisationID, key.Year, int(key.Month)).Scan(&data)
	if err != nil {
		return nil, notFound(err, "monthly salary "+key.String())
	}
	ms, err := decodeMonthlySalary(data)
	if err != nil {
		return nil, err
	}
	if err := fn(ms); err != nil {
		return nil, err
	}
	doc := ms.ToDocument()
	if data, err = json.Marshal(doc); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE monthly_salaries SET status = $2, document = $3, updated_at = $4
    WHERE id = $1
  `, doc.ID, string(doc.Status), data, doc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ms, nil
}

func (s *PostgresStore) ReplaceMonthlySalary(ctx context.Context, ms *domain.MonthlySalary, guard func(*domain.MonthlySalary) error) error {
	doc := ms.ToDocument()
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	k := doc.Key
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
    INSERT INTO monthly_salaries (id, employee_id, organisation_id, year, month, status, document, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    ON CONFLICT (employee_id, organisation_id, year, month) DO NOTHING
  `, doc.ID, k.EmployeeID, k.OrganisationID, k.Year, int(k.Month), string(doc.Status), data, doc.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return tx.Commit(ctx)
	}

	var existing []byte
	err = tx.QueryRow(ctx, `
    SELECT document FROM monthly_salaries
    WHERE employee_id = $1 AND organisation_id = $2 AND year = $3 AND month = $4
    FOR UPDATE
  `, k.EmployeeID, k.OrganisationID, k.Year, int(k.Month)).Scan(&existing)
	if err != nil {
		return notFound(err, "monthly salary "+k.String())
	}
	stored, err := decodeMonthlySalary(existing)
	if err != nil {
		return err
	}
	if err := guard(stored); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE monthly_salaries SET id = $5, status = $6, document = $7, updated_at = $8
    WHERE employee_id = $1 AND organisation_id = $2 AND year = $3 AND month = $4
  `, k.EmployeeID, k.OrganisationID, k.Year, int(k.Month), doc.ID, string(doc.Status), data, doc.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListMonthlySalaries(ctx context.Context, organisationID string, year int, month time.Month) ([]*domain.MonthlySalary, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT document FROM monthly_salaries
    WHERE organisation_id = $1 AND year = $2 AND month = $3
    ORDER BY employee_id
  `, organisationID, year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.MonthlySalary
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		ms, err := decodeMonthlySalary(data)
		if err != nil {
			return nil, err
		}
		out = append(out, ms)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteMonthlySalary(ctx context.Context, key domain.PayrollKey) error {
	tag, err := s.pool.Exec(ctx, `
    DELETE FROM monthly_salaries
    WHERE employee_id = $1 AND organisation_id = $2 AND year = $3 AND month = $4
  `, key.EmployeeID, key.OrganisationID, key.Year, int(key.Month))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("monthly salary %s: %w", key, ErrNotFound)
	}
	return nil
}
