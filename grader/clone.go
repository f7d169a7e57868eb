package grader

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type masterEntry struct {
	Type string `db:"type"`
	Name string `db:"name"`
	SQL  string `db:"sql"`
}

// Entries come back in creation order. Internal sqlite_* objects are
// skipped: their DDL cannot be replayed into another database.
const selectMasterEntries = `
	SELECT type, name, sql FROM sqlite_master
	WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%'`

// CloneDatabase copies the contents of a source database into a new
// in-memory database. This runs once per evaluation: the clone is the
// sandbox a single attempt executes against, and mutations to it never
// reach the source.
//
// Tables are created and filled first; indexes, triggers and views are
// replayed afterwards so that no trigger fires while rows are copied.
func CloneDatabase(src *sqlx.DB) (*sqlx.DB, error) {
	var entries []masterEntry
	if err := src.Select(&entries, selectMasterEntries); err != nil {
		return nil, err
	}

	dst, err := openMemoryDB()
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Type != "table" {
			continue
		}
		if _, err := dst.Exec(e.SQL); err != nil {
			dst.Close()
			return nil, fmt.Errorf("cloning table %s: %w", e.Name, err)
		}
		if err := copyTable(src, dst, e.Name); err != nil {
			dst.Close()
			return nil, fmt.Errorf("cloning table %s: %w", e.Name, err)
		}
	}
	for _, e := range entries {
		if e.Type == "table" {
			continue
		}
		if _, err := dst.Exec(e.SQL); err != nil {
			dst.Close()
			return nil, fmt.Errorf("cloning %s %s: %w", e.Type, e.Name, err)
		}
	}

	return dst, nil
}

// copyTable replays every row of a table into the destination database.
// Values are dumped through quote() so that each one travels as a SQL
// literal: re-binding scanned values as parameters would lose the
// distinction between TEXT and BLOB.
func copyTable(src, dst *sqlx.DB, table string) error {
	columns, err := tableColumns(src, table)
	if err != nil {
		return err
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "quote(" + quoteIdent(c) + ")"
	}
	rows, err := src.Queryx("SELECT " + strings.Join(quoted, ", ") + " FROM " + quoteIdent(table))
	if err != nil {
		return err
	}
	defer rows.Close()

	literals := make([]string, len(columns))
	scan := make([]interface{}, len(columns))
	for i := range literals {
		scan[i] = &literals[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return err
		}
		insert := "INSERT INTO " + quoteIdent(table) + " VALUES (" + strings.Join(literals, ", ") + ")"
		if _, err := dst.Exec(insert); err != nil {
			return err
		}
	}
	return rows.Err()
}

func tableColumns(db *sqlx.DB, table string) ([]string, error) {
	rows, err := db.Queryx("SELECT * FROM " + quoteIdent(table) + " LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}
