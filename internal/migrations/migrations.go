// Package migrations holds the versioned schema for taskapi. Each file
// registers one up/down pair; run them with `taskapi db migrate`.
package migrations

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the registry consumed by migrate.NewMigrator.
var Migrations = migrate.NewMigrations()

// IsSQLite reports whether db talks to SQLite, which cannot add foreign keys
// to an existing table.
func IsSQLite(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.SQLite
}

// IsPostgreSQL reports whether db talks to PostgreSQL.
func IsPostgreSQL(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}
