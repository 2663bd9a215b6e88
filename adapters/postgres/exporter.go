// Package postgres ships ranked results to a local Postgres instance so the
// analyst can query them alongside other warehouse tables.
package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"covidetl/domain/rank"
	"covidetl/internal/errors"
)

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %s (
	country        TEXT NOT NULL,
	population     BIGINT NOT NULL,
	cases          BIGINT NOT NULL,
	cases_per_100k DOUBLE PRECISION NOT NULL,
	exported_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Exporter writes ranked rows into a Postgres table
type Exporter struct {
	db    *sqlx.DB
	table string
}

// Connect opens a connection and ensures the export table exists.
func Connect(ctx context.Context, url, table string) (*Exporter, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(schemaTemplate, table)); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to ensure table %s", table)
	}
	return &Exporter{db: db, table: table}, nil
}

// Close releases the database connection.
func (e *Exporter) Close() error {
	return e.db.Close()
}

// Export inserts all ranked rows inside one transaction and returns the
// number of rows written. Earlier exports stay in place; exported_at
// distinguishes runs.
func (e *Exporter) Export(ctx context.Context, result *rank.RankedResult) (int, error) {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin export transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (country, population, cases, cases_per_100k) VALUES ($1, $2, $3, $4)", e.table))
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for _, row := range result.Rows {
		if _, err := stmt.ExecContext(ctx, row.DisplayName, row.Population, row.Cases, row.CasesPer100k); err != nil {
			return 0, errors.Wrapf(err, "failed to insert row for %s", row.DisplayName)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit export")
	}

	log.Printf("[Postgres] %d rows exported to %s", len(result.Rows), e.table)
	return len(result.Rows), nil
}

// VerifyCount checks that the table holds at least the rows just exported.
// A mismatch means a concurrent truncate or a failed insert slipped through.
func (e *Exporter) VerifyCount(ctx context.Context, expected int) error {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", e.table)
	if err := e.db.GetContext(ctx, &count, query); err != nil {
		return errors.Wrapf(err, "failed to count rows in %s", e.table)
	}
	if count < expected {
		return errors.New(errors.CodeExportFailed,
			fmt.Sprintf("table %s holds %d rows, expected at least %d", e.table, count, expected))
	}
	log.Printf("[Postgres] verified %s holds %d rows (expected >= %d)", e.table, count, expected)
	return nil
}
