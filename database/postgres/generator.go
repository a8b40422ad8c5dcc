package postgres

import (
	"fmt"
	"strings"

	"github.com/MosYCo/test-data-generate/database"
)

// Generator implements database.SQLGenerator for PostgreSQL
type Generator struct{}

// NewGenerator creates a new PostgreSQL SQL generator
func NewGenerator() *Generator {
	return &Generator{}
}

// CreateTable generates PostgreSQL SQL to create a table
func (g *Generator) CreateTable(table database.Table) (string, string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", g.QuoteIdentifier(table.Name)))

	for i, col := range table.Columns {
		sb.WriteString("  ")
		sb.WriteString(g.FormatColumnDefinition(col))
		if i < len(table.Columns)-1 || len(table.ForeignKeys) > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}

	for i, fk := range table.ForeignKeys {
		sb.WriteString("  ")
		sb.WriteString(g.formatForeignKeyConstraint(fk))
		if i < len(table.ForeignKeys)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(")")

	description := fmt.Sprintf("Create table %s", table.Name)
	return sb.String(), description
}

// FormatColumnDefinition formats a column definition for CREATE TABLE
func (g *Generator) FormatColumnDefinition(col database.Column) string {
	parts := []string{g.QuoteIdentifier(col.Name), col.Type}

	if col.IsPrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}

	if !col.Nullable && !col.IsPrimaryKey {
		parts = append(parts, "NOT NULL")
	}

	if col.Default != nil {
		parts = append(parts, fmt.Sprintf("DEFAULT %s", *col.Default))
	}

	return strings.Join(parts, " ")
}

func (g *Generator) formatForeignKeyConstraint(fk database.ForeignKey) string {
	cols := make([]string, len(fk.Columns))
	for i, c := range fk.Columns {
		cols[i] = g.QuoteIdentifier(c)
	}
	refs := make([]string, len(fk.ReferencedColumns))
	for i, c := range fk.ReferencedColumns {
		refs[i] = g.QuoteIdentifier(c)
	}
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		g.QuoteIdentifier(fk.Name), strings.Join(cols, ", "),
		g.QuoteIdentifier(fk.ReferencedTable), strings.Join(refs, ", "))
}

// QuoteIdentifier quotes a table or column name
func (g *Generator) QuoteIdentifier(name string) string {
	return database.QuoteDoubled(name)
}

// FormatLiteral renders a value as a PostgreSQL literal
func (g *Generator) FormatLiteral(value any) string {
	return database.StandardLiteral(value, "TRUE", "FALSE")
}

// ParameterPlaceholder returns PostgreSQL parameter placeholder ($1, $2, etc.)
func (g *Generator) ParameterPlaceholder(position int) string {
	return fmt.Sprintf("$%d", position)
}
