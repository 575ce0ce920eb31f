package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds all database migrations.
var Migrations = migrate.NewMigrations() //nolint:gochecknoglobals // -

// execAll runs each statement in order, stopping at the first failure.
func execAll(ctx context.Context, db *bun.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// isSQLite reports whether the connection uses the embedded dialect.
func isSQLite(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.SQLite
}
