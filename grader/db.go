package grader

import (
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteDriverName = "sqlite3"

// openMemoryDB opens a fresh in-memory database. The connection pool is
// pinned to a single connection: every pooled connection would otherwise
// get its own empty in-memory database.
func openMemoryDB() (*sqlx.DB, error) {
	db, err := sqlx.Connect(sqliteDriverName, ":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// CreateDatabaseFromScript creates a new in-memory database initialized by
// running the given SQL script (schema and seed rows).
func CreateDatabaseFromScript(script string) (*sqlx.DB, error) {
	db, err := openMemoryDB()
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(script); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateDatabase creates a new in-memory database initialized from a SQL
// script file. This only needs to run once per dataset, at startup.
func CreateDatabase(path string) (*sqlx.DB, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return CreateDatabaseFromScript(string(script))
}

// quoteIdent quotes a SQL identifier for safe interpolation into
// statements built from sqlite_master contents.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
