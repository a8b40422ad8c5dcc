package task

import (
	"strings"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/internal/datasource"
)

// MergeSchema replaces the table set with the introspected schema. Edits made
// to tables and columns that still exist are carried over by name.
func (c *Config) MergeSchema(schema *database.Schema) {
	encoding := c.DataSource.Charset
	if encoding == "" {
		encoding = datasource.DefaultCharset
	}

	merged := make([]TableSpec, 0, len(schema.Tables))
	for i := range schema.Tables {
		table := &schema.Tables[i]
		spec := tableFromSchema(table, encoding)

		if prior := c.Table(table.Name); prior != nil {
			spec.Description = prior.Description
			if prior.Encoding != "" {
				spec.Encoding = prior.Encoding
			}
			if prior.RowCount > 0 {
				spec.RowCount = prior.RowCount
			}
			for j := range spec.Columns {
				if old := prior.Column(spec.Columns[j].Name); old != nil {
					mergeColumn(&spec.Columns[j], old)
				}
			}
		}
		merged = append(merged, spec)
	}
	c.Tables = merged
}

func tableFromSchema(table *database.Table, encoding string) TableSpec {
	spec := TableSpec{
		Name:     table.Name,
		Encoding: encoding,
		RowCount: DefaultRowCount,
		Columns:  make([]ColumnSpec, 0, len(table.Columns)),
	}

	for _, col := range table.Columns {
		cs := ColumnSpec{
			Name:         col.Name,
			Type:         col.Type,
			Nullable:     col.Nullable,
			IsPrimaryKey: col.IsPrimaryKey,
			Unique:       table.IsUnique(col.Name),
		}
		if fk, ok := table.ForeignKeyFor(col.Name); ok {
			cs.IsForeignKey = true
			cs.ForeignKeyTable = fk.ReferencedTable
			cs.ForeignKeyColumn = fk.ReferencedColumns[0]
		}
		cs.GenerationRule = DefaultRule(cs)
		spec.Columns = append(spec.Columns, cs)
	}
	return spec
}

func mergeColumn(dst *ColumnSpec, old *ColumnSpec) {
	dst.Description = old.Description
	dst.Example = old.Example
	if old.GenerationRule != "" {
		dst.GenerationRule = old.GenerationRule
	}
	if old.IsForeignKey != dst.IsForeignKey || old.ForeignKeyTable != dst.ForeignKeyTable || old.ForeignKeyColumn != dst.ForeignKeyColumn {
		dst.IsForeignKey = old.IsForeignKey
		dst.ForeignKeyTable = old.ForeignKeyTable
		dst.ForeignKeyColumn = old.ForeignKeyColumn
	}
}

// DefaultRule picks the rule a freshly introspected column starts with.
func DefaultRule(col ColumnSpec) string {
	switch {
	case col.IsForeignKey:
		return RuleReference
	case col.IsPrimaryKey && IsIntegerType(col.Type):
		return RuleAutoIncrement
	default:
		return RuleRandom
	}
}

// IsIntegerType reports whether a database type name stores integers.
func IsIntegerType(typ string) bool {
	t := strings.ToLower(typ)
	return strings.Contains(t, "int") || strings.Contains(t, "serial")
}

// DatabaseTables converts the table specs back into schema tables, for
// rendering CREATE TABLE statements.
func (c *Config) DatabaseTables() []database.Table {
	tables := make([]database.Table, 0, len(c.Tables))
	for _, spec := range c.Tables {
		table := database.Table{
			Name:    spec.Name,
			Columns: make([]database.Column, 0, len(spec.Columns)),
		}
		for _, col := range spec.Columns {
			table.Columns = append(table.Columns, database.Column{
				Name:         col.Name,
				Type:         col.Type,
				Nullable:     col.Nullable,
				IsPrimaryKey: col.IsPrimaryKey,
			})
			if col.Unique && !col.IsPrimaryKey {
				table.Indexes = append(table.Indexes, database.Index{
					Name:    spec.Name + "_" + col.Name + "_key",
					Columns: []string{col.Name},
					Unique:  true,
				})
			}
			if col.IsForeignKey && col.ForeignKeyTable != "" && col.ForeignKeyColumn != "" {
				table.ForeignKeys = append(table.ForeignKeys, database.ForeignKey{
					Name:              spec.Name + "_" + col.Name + "_fkey",
					Columns:           []string{col.Name},
					ReferencedTable:   col.ForeignKeyTable,
					ReferencedColumns: []string{col.ForeignKeyColumn},
				})
			}
		}
		tables = append(tables, table)
	}
	return tables
}
