// Package dbtest provides a migrated in-memory SQLite database for tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/momager/momager-core/internal/db"
)

const dsn = "file::memory:?_pragma=foreign_keys(1)"

// New returns a fresh database with every migration applied.
// A single connection keeps the in-memory database alive for the whole test.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return database
}
