package grader

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrVerifyQueryMultiStatement is returned when a query restricted to a
// single statement turns out to contain several. Callers can match it
// with errors.Is to tell a broken problem configuration apart from an
// ordinary SQL error.
var ErrVerifyQueryMultiStatement = errors.New(
	"verification query must not contain multiple statements; check problem configuration")

// Row is a single result row, column values in engine order.
type Row []interface{}

// Execute runs query against db and materializes any produced rows.
//
// The engine offers two primitives: a row-returning one that accepts a
// single statement, and script execution that runs any number of
// statements sequentially but discards SELECT output. Execute counts
// the statements up front and picks the primitive matching the query's
// shape; multi-statement text is either executed as a script (when
// allowMultiStatement is set) or rejected with
// ErrVerifyQueryMultiStatement.
//
// On success the returned slice is never nil: a query producing no rows
// yields an empty slice. On failure it is nil, which is distinct from
// an empty-but-successful result.
func Execute(db *sqlx.DB, query string, allowMultiStatement bool) ([]Row, error) {
	if statementCount(query) > 1 {
		if !allowMultiStatement {
			return nil, ErrVerifyQueryMultiStatement
		}
		if _, err := db.Exec(query); err != nil {
			return nil, err
		}
		return []Row{}, nil
	}

	rows, err := db.Queryx(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		result = append(result, Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
