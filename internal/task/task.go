// Package task holds the configuration a generation task accumulates as the
// user moves through the wizard, and its on-disk representation.
package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MosYCo/test-data-generate/internal/clierr"
	"github.com/MosYCo/test-data-generate/internal/datasource"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXML  = "xml"
	FormatSQL  = "sql"
	FormatYAML = "yaml"
)

// Formats lists the export formats in display order
var Formats = []string{FormatJSON, FormatCSV, FormatXML, FormatSQL, FormatYAML}

// Generation rule names
const (
	RuleAutoIncrement = "auto_increment"
	RuleRandom        = "random"
	RuleReference     = "reference"
	RuleFixed         = "fixed"
	RulePick          = "pick"
	RuleExample       = "example"
	RuleNull          = "null"
)

// Row count bounds
const (
	DefaultRowCount = 10
	MaxPreviewRows  = 1000
)

// Config is the task being assembled by the wizard.
type Config struct {
	Name          string                `json:"name" yaml:"name"`
	Language      string                `json:"language" yaml:"language"`
	Remark        string                `json:"remark,omitempty" yaml:"remark,omitempty"`
	DataSource    datasource.DataSource `json:"data_source" yaml:"data_source"`
	Tables        []TableSpec           `json:"tables" yaml:"tables"`
	ExportFormat  string                `json:"export_format,omitempty" yaml:"export_format,omitempty"`
	Seed          int64                 `json:"seed,omitempty" yaml:"seed,omitempty"`
	IncludeSchema bool                  `json:"include_schema,omitempty" yaml:"include_schema,omitempty"` // sql only
}

// TableSpec describes how rows are generated for one table.
type TableSpec struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Encoding    string       `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	RowCount    int          `json:"row_count" yaml:"row_count"`
	Columns     []ColumnSpec `json:"columns" yaml:"columns"`
}

// ColumnSpec describes one column and the rule producing its values.
type ColumnSpec struct {
	Name             string `json:"name" yaml:"name"`
	Type             string `json:"type" yaml:"type"`
	Nullable         bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	IsPrimaryKey     bool   `json:"is_primary_key,omitempty" yaml:"is_primary_key,omitempty"`
	Unique           bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	IsForeignKey     bool   `json:"is_foreign_key,omitempty" yaml:"is_foreign_key,omitempty"`
	ForeignKeyTable  string `json:"foreign_key_table,omitempty" yaml:"foreign_key_table,omitempty"`
	ForeignKeyColumn string `json:"foreign_key_column,omitempty" yaml:"foreign_key_column,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	GenerationRule   string `json:"generation_rule,omitempty" yaml:"generation_rule,omitempty"`
	Example          string `json:"example,omitempty" yaml:"example,omitempty"`
}

// New returns an empty task with the language taken from the environment.
func New() *Config {
	return &Config{Language: DefaultLanguage(), ExportFormat: FormatJSON}
}

// Table returns the table spec with the given name, or nil.
func (c *Config) Table(name string) *TableSpec {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// Column returns the column spec with the given name, or nil.
func (t *TableSpec) Column(name string) *ColumnSpec {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in declaration order.
func (t *TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// TotalRows is the number of rows the task will generate across all tables.
func (c *Config) TotalRows() int {
	total := 0
	for _, t := range c.Tables {
		total += t.RowCount
	}
	return total
}

// ValidateInfo checks the fields collected by the task configuration dialog.
func (c *Config) ValidateInfo() error {
	if strings.TrimSpace(c.Name) == "" {
		return clierr.Validation(errors.New("task name is required"))
	}
	return nil
}

// Validate reports every problem with the task at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("task name is required"))
	}
	if err := c.DataSource.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("data source: %w", err))
	}
	if c.ExportFormat != "" && !IsFormat(c.ExportFormat) {
		errs = append(errs, fmt.Errorf("unknown export format %q", c.ExportFormat))
	}
	if err := c.ValidateTables(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return clierr.Validation(errors.Join(errs...))
}

// ValidateTables checks the table set on its own, as the table detail step does.
func (c *Config) ValidateTables() error {
	if len(c.Tables) == 0 {
		return errors.New("at least one table is required")
	}

	var errs []error
	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, errors.New("table name is required"))
			continue
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("table %s is listed twice", t.Name))
		}
		seen[t.Name] = true

		if t.RowCount < 1 {
			errs = append(errs, fmt.Errorf("table %s: row count must be at least 1", t.Name))
		}
		if len(t.Columns) == 0 {
			errs = append(errs, fmt.Errorf("table %s has no columns", t.Name))
		}
		for _, col := range t.Columns {
			if err := c.ValidateColumn(col); err != nil {
				errs = append(errs, fmt.Errorf("table %s: %w", t.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ValidateColumn checks a single column edit against the rest of the task.
func (c *Config) ValidateColumn(col ColumnSpec) error {
	var errs []error

	if strings.TrimSpace(col.Name) == "" {
		errs = append(errs, errors.New("column name is required"))
	}
	if strings.TrimSpace(col.Type) == "" {
		errs = append(errs, fmt.Errorf("column %s: type is required", col.Name))
	}

	if col.IsForeignKey {
		switch {
		case col.ForeignKeyTable == "":
			errs = append(errs, fmt.Errorf("column %s: referenced table is required", col.Name))
		case col.ForeignKeyColumn == "":
			errs = append(errs, fmt.Errorf("column %s: referenced column is required", col.Name))
		default:
			ref := c.Table(col.ForeignKeyTable)
			if ref == nil {
				errs = append(errs, fmt.Errorf("column %s: referenced table %s does not exist", col.Name, col.ForeignKeyTable))
			} else if ref.Column(col.ForeignKeyColumn) == nil {
				errs = append(errs, fmt.Errorf("column %s: referenced column %s.%s does not exist", col.Name, col.ForeignKeyTable, col.ForeignKeyColumn))
			}
		}
	}

	return errors.Join(errs...)
}

// SetForeignKey toggles the foreign key flag. Turning it off clears the
// reference. Turning it on switches the rule to reference, but a column that
// was already a foreign key keeps any explicit rule.
func (col *ColumnSpec) SetForeignKey(on bool) {
	was := col.IsForeignKey
	col.IsForeignKey = on
	if !on {
		col.ForeignKeyTable = ""
		col.ForeignKeyColumn = ""
		if col.GenerationRule == RuleReference {
			col.GenerationRule = RuleRandom
		}
		return
	}
	if !was || col.GenerationRule == "" {
		col.GenerationRule = RuleReference
	}
}

// IsFormat reports whether f is a supported export format.
func IsFormat(f string) bool {
	for _, known := range Formats {
		if known == f {
			return true
		}
	}
	return false
}

// ClampPreviewRows keeps a preview row count within bounds; anything invalid
// falls back to DefaultRowCount.
func ClampPreviewRows(n int) int {
	if n < 1 || n > MaxPreviewRows {
		return DefaultRowCount
	}
	return n
}
