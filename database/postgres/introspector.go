package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MosYCo/test-data-generate/database"
)

// Introspector implements database.Introspector for PostgreSQL
type Introspector struct{}

// NewIntrospector creates a new PostgreSQL introspector
func NewIntrospector() *Introspector {
	return &Introspector{}
}

// IntrospectSchema reads the entire PostgreSQL database schema
func (i *Introspector) IntrospectSchema(ctx context.Context, db *sql.DB) (*database.Schema, error) {
	schema := &database.Schema{
		Tables: make([]database.Table, 0),
	}

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

// GetTables returns all table names in the PostgreSQL database
func (i *Introspector) GetTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
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

// GetColumns returns all columns for a given PostgreSQL table
func (i *Introspector) GetColumns(ctx context.Context, db *sql.DB, tableName string) ([]database.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			COALESCE(
				(SELECT true
				 FROM information_schema.table_constraints tc
				 JOIN information_schema.key_column_usage kcu
				   ON tc.constraint_name = kcu.constraint_name
				   AND tc.table_schema = kcu.table_schema
				 WHERE tc.table_name = c.table_name
				   AND tc.table_schema = c.table_schema
				   AND tc.constraint_type = 'PRIMARY KEY'
				   AND kcu.column_name = c.column_name),
				false
			) as is_primary_key
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema()
		  AND c.table_name = $1
		ORDER BY c.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []database.Column
	for rows.Next() {
		var col database.Column
		var nullable string
		var defaultVal sql.NullString

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultVal, &col.IsPrimaryKey); err != nil {
			return nil, err
		}

		col.Type = strings.TrimSpace(col.Type)
		col.Nullable = nullable == "YES"

		// PostgreSQL reports SERIAL/BIGSERIAL as INTEGER/BIGINT with a nextval() default
		if defaultVal.Valid && isSerialDefault(defaultVal.String) {
			if strings.EqualFold(col.Type, "bigint") {
				col.Type = "bigserial"
			} else if strings.EqualFold(col.Type, "integer") {
				col.Type = "serial"
			}
		} else if defaultVal.Valid {
			normalized := normalizeDefault(defaultVal.String)
			col.Default = &normalized
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// GetIndexes returns all non-primary indexes for a given PostgreSQL table,
// including the ones backing UNIQUE constraints.
func (i *Introspector) GetIndexes(ctx context.Context, db *sql.DB, tableName string) ([]database.Index, error) {
	query := `
		SELECT
			i.relname,
			ix.indisunique,
			a.attname
		FROM pg_class t
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_index ix ON ix.indrelid = t.oid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = current_schema()
		  AND t.relname = $1
		  AND ix.indisprimary = false
		ORDER BY i.relname, k.ord
	`

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("query failed for table %q (schema: current_schema()): %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var indexes []database.Index
	byName := make(map[string]int)
	for rows.Next() {
		var name, column string
		var unique bool
		if err := rows.Scan(&name, &unique, &column); err != nil {
			return nil, err
		}

		pos, ok := byName[name]
		if !ok {
			indexes = append(indexes, database.Index{Name: name, Unique: unique})
			pos = len(indexes) - 1
			byName[name] = pos
		}
		indexes[pos].Columns = append(indexes[pos].Columns, column)
	}

	return indexes, rows.Err()
}

// GetForeignKeys returns all foreign keys for a given PostgreSQL table
func (i *Introspector) GetForeignKeys(ctx context.Context, db *sql.DB, tableName string) ([]database.ForeignKey, error) {
	query := `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = current_schema()
			AND tc.table_name = $1
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	// Group by constraint name to handle multi-column foreign keys
	fkMap := make(map[string]*database.ForeignKey)
	var fkNames []string

	for rows.Next() {
		var constraintName, columnName, foreignTableName, foreignColumnName string

		if err := rows.Scan(&constraintName, &columnName, &foreignTableName, &foreignColumnName); err != nil {
			return nil, err
		}

		if _, exists := fkMap[constraintName]; !exists {
			fkMap[constraintName] = &database.ForeignKey{
				Name:              constraintName,
				Columns:           []string{},
				ReferencedTable:   foreignTableName,
				ReferencedColumns: []string{},
			}
			fkNames = append(fkNames, constraintName)
		}

		fk := fkMap[constraintName]
		if !contains(fk.Columns, columnName) {
			fk.Columns = append(fk.Columns, columnName)
		}
		if !contains(fk.ReferencedColumns, foreignColumnName) {
			fk.ReferencedColumns = append(fk.ReferencedColumns, foreignColumnName)
		}
	}

	// Convert map to slice in consistent order
	var foreignKeys []database.ForeignKey
	for _, name := range fkNames {
		foreignKeys = append(foreignKeys, *fkMap[name])
	}

	return foreignKeys, rows.Err()
}

// isSerialDefault checks if a default value is from a sequence (indicating SERIAL/BIGSERIAL)
func isSerialDefault(defaultVal string) bool {
	// - nextval('tablename_columnname_seq'::regclass)
	return strings.HasPrefix(defaultVal, "nextval(") && strings.Contains(defaultVal, "_seq")
}

// normalizeDefault removes redundant trailing type casts ('{}'::jsonb -> '{}')
func normalizeDefault(defaultVal string) string {
	if idx := strings.LastIndex(defaultVal, "::"); idx > 0 {
		beforeCast := defaultVal[:idx]
		// Balanced quotes means the cast is outside any string literal
		if strings.Count(beforeCast, "'")%2 == 0 {
			return beforeCast
		}
	}
	return defaultVal
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
