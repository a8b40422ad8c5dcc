package database

import (
	"context"
	"database/sql"
)

// Schema represents an introspected database schema
type Schema struct {
	Tables []Table `json:"tables" yaml:"tables"`
}

// Table represents a database table
type Table struct {
	Name        string       `json:"name" yaml:"name"`
	Columns     []Column     `json:"columns" yaml:"columns"`
	Indexes     []Index      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`
}

// Column represents a table column
type Column struct {
	Name         string  `json:"name" yaml:"name"`
	Type         string  `json:"type" yaml:"type"`
	Nullable     bool    `json:"nullable" yaml:"nullable"`
	Default      *string `json:"default,omitempty" yaml:"default,omitempty"`
	IsPrimaryKey bool    `json:"is_primary_key" yaml:"is_primary_key"`
}

// Index represents a table index
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique" yaml:"unique"`
}

// ForeignKey represents a foreign key constraint
type ForeignKey struct {
	Name              string   `json:"name" yaml:"name"`
	Columns           []string `json:"columns" yaml:"columns"`
	ReferencedTable   string   `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns" yaml:"referenced_columns"`
}

// GetTable returns the table with the given name, or nil.
func (s *Schema) GetTable(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// ForeignKeyFor returns the single-column foreign key that covers the column, if any.
func (t *Table) ForeignKeyFor(column string) (ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) == 1 && fk.Columns[0] == column && len(fk.ReferencedColumns) == 1 {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

// IsUnique reports whether the column is a primary key or the only column of a unique index.
func (t *Table) IsUnique(column string) bool {
	for _, col := range t.Columns {
		if col.Name == column && col.IsPrimaryKey {
			return true
		}
	}
	for _, idx := range t.Indexes {
		if idx.Unique && len(idx.Columns) == 1 && idx.Columns[0] == column {
			return true
		}
	}
	return false
}

// Introspector defines the interface for database schema introspection
type Introspector interface {
	// IntrospectSchema reads the entire database schema
	IntrospectSchema(ctx context.Context, db *sql.DB) (*Schema, error)

	// GetTables returns all table names in the database
	GetTables(ctx context.Context, db *sql.DB) ([]string, error)

	// GetColumns returns all columns for a given table
	GetColumns(ctx context.Context, db *sql.DB, tableName string) ([]Column, error)

	// GetIndexes returns all indexes for a given table
	GetIndexes(ctx context.Context, db *sql.DB, tableName string) ([]Index, error)

	// GetForeignKeys returns all foreign keys for a given table
	GetForeignKeys(ctx context.Context, db *sql.DB, tableName string) ([]ForeignKey, error)
}

// SQLGenerator defines the interface for generating database-specific SQL
type SQLGenerator interface {
	// CreateTable generates SQL to create a table
	CreateTable(table Table) (sql string, description string)

	// FormatColumnDefinition formats a column definition for CREATE TABLE
	FormatColumnDefinition(col Column) string

	// QuoteIdentifier quotes a table or column name
	QuoteIdentifier(name string) string

	// FormatLiteral renders a Go value as an SQL literal
	FormatLiteral(value any) string

	// ParameterPlaceholder returns the parameter placeholder for this database
	// PostgreSQL: $1, $2, etc.
	// SQLite: ?, ?, etc.
	ParameterPlaceholder(position int) string
}

// Driver represents a database driver with introspection and SQL generation
type Driver interface {
	Introspector
	SQLGenerator

	// Name returns the database driver name (e.g., "postgres", "sqlite")
	Name() string
}
