package repository

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Dialect selects the few statements that differ between Postgres and SQLite.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// DialectOf infers the dialect from the sqlx driver name.
func DialectOf(db *sqlx.DB) Dialect {
	if db.DriverName() == "sqlite" {
		return DialectSQLite
	}
	return DialectPostgres
}

// forUpdate locks selected rows on Postgres. SQLite serializes writers on its
// own, so the clause is dropped there.
func (d Dialect) forUpdate() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	ddl, err := schemaFS.ReadFile(fmt.Sprintf("schema/%s.sql", DialectOf(db)))
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
