package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// InsertStatement renders a single INSERT with literal values, for SQL export.
func InsertStatement(gen SQLGenerator, table string, columns []string, row []any) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = gen.QuoteIdentifier(c)
	}
	values := make([]string, len(row))
	for i, v := range row {
		values[i] = gen.FormatLiteral(v)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		gen.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(values, ", "))
}

// PreparedInsert renders a parameterized INSERT for the given columns.
func PreparedInsert(gen SQLGenerator, table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = gen.QuoteIdentifier(c)
		params[i] = gen.ParameterPlaceholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		gen.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

// InsertRows writes rows into table inside a single transaction.
// Either all rows are inserted or none are.
func InsertRows(ctx context.Context, db *sql.DB, gen SQLGenerator, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, PreparedInsert(gen, table, columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert for table %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	var written int64
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d of table %s has %d values, expected %d", i, table, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d into %s: %w", i, table, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit inserts for table %s: %w", table, err)
	}
	return written, nil
}
