package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MosYCo/test-data-generate/database"
)

// Introspector implements database.Introspector for SQLite
type Introspector struct{}

// NewIntrospector creates a new SQLite introspector
func NewIntrospector() *Introspector {
	return &Introspector{}
}

// IntrospectSchema reads the entire SQLite database schema
func (i *Introspector) IntrospectSchema(ctx context.Context, db *sql.DB) (*database.Schema, error) {
	schema := &database.Schema{}

	tables, err := i.GetTables(ctx, db)
	if err != nil {
		return nil, err
	}

	for _, tableName := range tables {
		table := database.Table{Name: tableName}

		columns, err := i.GetColumns(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		table.Columns = columns

		indexes, err := i.GetIndexes(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get indexes for table %s: %w", tableName, err)
		}
		table.Indexes = indexes

		foreignKeys, err := i.GetForeignKeys(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get foreign keys for table %s: %w", tableName, err)
		}
		table.ForeignKeys = foreignKeys

		schema.Tables = append(schema.Tables, table)
	}

	return schema, nil
}

// GetTables returns all table names in the SQLite database
func (i *Introspector) GetTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tableNames []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tableNames = append(tableNames, tableName)
	}

	return tableNames, rows.Err()
}

// GetColumns returns all columns for a given SQLite table
func (i *Introspector) GetColumns(ctx context.Context, db *sql.DB, tableName string) ([]database.Column, error) {
	// PRAGMA does not accept bound parameters
	query := fmt.Sprintf("PRAGMA table_info(%s)", database.QuoteDoubled(tableName))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []database.Column
	for rows.Next() {
		var cid int
		var col database.Column
		var notNull int
		var defaultVal sql.NullString
		var pk int

		// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}

		col.Nullable = notNull == 0 && pk == 0
		col.IsPrimaryKey = pk > 0
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// GetIndexes returns all indexes for a given SQLite table
func (i *Introspector) GetIndexes(ctx context.Context, db *sql.DB, tableName string) ([]database.Index, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", database.QuoteDoubled(tableName))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	type listed struct {
		index  database.Index
		origin string
	}
	var found []listed
	for rows.Next() {
		var seq int
		var idx database.Index
		var origin string
		var partial int
		var unique int

		// PRAGMA index_list returns: seq, name, unique, origin, partial
		if err := rows.Scan(&seq, &idx.Name, &unique, &origin, &partial); err != nil {
			_ = rows.Close()
			return nil, err
		}
		idx.Unique = unique == 1
		found = append(found, listed{index: idx, origin: origin})
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	// index_info is queried after index_list is closed so a single
	// connection pool (e.g. :memory:) is not exhausted.
	var indexes []database.Index
	for _, f := range found {
		idx := f.index
		infoRows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", database.QuoteDoubled(idx.Name)))
		if err != nil {
			return nil, err
		}
		for infoRows.Next() {
			var seqno, cid int
			var name sql.NullString

			// PRAGMA index_info returns: seqno, cid, name
			if err := infoRows.Scan(&seqno, &cid, &name); err != nil {
				_ = infoRows.Close()
				return nil, err
			}
			if name.Valid {
				idx.Columns = append(idx.Columns, name.String)
			}
		}
		_ = infoRows.Close()

		// Primary key indexes are covered by Column.IsPrimaryKey
		if f.origin == "pk" {
			continue
		}
		indexes = append(indexes, idx)
	}

	return indexes, nil
}

// GetForeignKeys returns all foreign keys for a given SQLite table
func (i *Introspector) GetForeignKeys(ctx context.Context, db *sql.DB, tableName string) ([]database.ForeignKey, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", database.QuoteDoubled(tableName))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	// Group by id (foreign key constraint ID)
	fkMap := make(map[int]*database.ForeignKey)
	var fkIds []int

	for rows.Next() {
		var id, seq int
		var table, from string
		var to sql.NullString
		var onUpdate, onDelete, match string

		// PRAGMA foreign_key_list returns: id, seq, table, from, to, on_update, on_delete, match
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		if _, exists := fkMap[id]; !exists {
			fkMap[id] = &database.ForeignKey{
				Name:              fmt.Sprintf("fk_%s_%d", tableName, id),
				Columns:           []string{},
				ReferencedTable:   table,
				ReferencedColumns: []string{},
			}
			fkIds = append(fkIds, id)
		}

		// A NULL target column means the parent's primary key
		target := to.String
		if !to.Valid || target == "" {
			target = "id"
		}
		fkMap[id].Columns = append(fkMap[id].Columns, from)
		fkMap[id].ReferencedColumns = append(fkMap[id].ReferencedColumns, target)
	}

	// Convert map to slice in consistent order
	var foreignKeys []database.ForeignKey
	for _, id := range fkIds {
		foreignKeys = append(foreignKeys, *fkMap[id])
	}

	return foreignKeys, rows.Err()
}
