package sqlite

import (
	"strings"
	"testing"

	"github.com/MosYCo/test-data-generate/database"
)

func TestGenerator_CreateTable(t *testing.T) {
	gen := NewGenerator()

	table := database.Table{
		Name: "orders",
		Columns: []database.Column{
			{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
			{Name: "user_id", Type: "INTEGER", Nullable: false},
		},
		ForeignKeys: []database.ForeignKey{
			{Name: "fk", Columns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
		},
	}

	sql, desc := gen.CreateTable(table)

	if !strings.Contains(sql, `CREATE TABLE "orders"`) {
		t.Errorf("Expected quoted table name, got:\n%s", sql)
	}
	if !strings.Contains(sql, `"id" INTEGER PRIMARY KEY`) {
		t.Errorf("Expected primary key column, got:\n%s", sql)
	}
	if !strings.Contains(sql, `"user_id" INTEGER NOT NULL`) {
		t.Errorf("Expected NOT NULL column, got:\n%s", sql)
	}
	if !strings.Contains(sql, `FOREIGN KEY ("user_id") REFERENCES "users" ("id")`) {
		t.Errorf("Expected inline foreign key, got:\n%s", sql)
	}
	if desc != "Create table orders" {
		t.Errorf("Unexpected description %q", desc)
	}
}

func TestGenerator_FormatLiteral(t *testing.T) {
	gen := NewGenerator()

	tests := []struct {
		value    any
		expected string
	}{
		{nil, "NULL"},
		{true, "1"},
		{false, "0"},
		{42, "42"},
		{int64(-7), "-7"},
		{1.5, "1.5"},
		{"O'Brien", "'O''Brien'"},
	}

	for _, tt := range tests {
		if got := gen.FormatLiteral(tt.value); got != tt.expected {
			t.Errorf("FormatLiteral(%v) = %q, expected %q", tt.value, got, tt.expected)
		}
	}
}

func TestDriver_Names(t *testing.T) {
	if NewDriver().Name() != "sqlite" {
		t.Errorf("Expected sqlite driver name")
	}
	if NewLibSQLDriver().Name() != "libsql" {
		t.Errorf("Expected libsql driver name")
	}
	if NewDriver().ParameterPlaceholder(3) != "?" {
		t.Errorf("Expected ? placeholder")
	}
}
