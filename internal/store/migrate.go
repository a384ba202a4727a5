package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "0001_taxation_records",
		sql: `
CREATE TABLE taxation_records (
  id UUID PRIMARY KEY,
  employee_id TEXT NOT NULL,
  organisation_id TEXT NOT NULL,
  tax_year TEXT NOT NULL,
  status TEXT NOT NULL,
  document JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  UNIQUE (employee_id, organisation_id, tax_year)
);
CREATE INDEX taxation_records_org_year_idx ON taxation_records (organisation_id, tax_year);`,
	},
	{
		version: "0002_monthly_salaries",
		sql: `
CREATE TABLE monthly_salaries (
  id UUID PRIMARY KEY,
  employee_id TEXT NOT NULL,
  organisation_id TEXT NOT NULL,
  year INT NOT NULL,
  month INT NOT NULL CHECK (month BETWEEN 1 AND 12),
  status TEXT NOT NULL,
  document JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  UNIQUE (employee_id, organisation_id, year, month)
);
CREATE INDEX monthly_salaries_period_idx ON monthly_salaries (organisation_id, year, month);`,
	},
}

// Migrate applies any migrations not yet recorded in schema_migrations, each
// in its own transaction.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())"); err != nil {
		return err
	}
	for _, m := range migrations {
		var count int
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = $1", m.version).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %s failed: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}
