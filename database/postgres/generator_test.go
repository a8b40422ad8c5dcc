package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/MosYCo/test-data-generate/database"
)

func TestGenerator_CreateTable(t *testing.T) {
	gen := NewGenerator()

	def := "now()"
	table := database.Table{
		Name: "orders",
		Columns: []database.Column{
			{Name: "id", Type: "serial", IsPrimaryKey: true},
			{Name: "user_id", Type: "integer"},
			{Name: "created_at", Type: "timestamp", Nullable: true, Default: &def},
		},
		ForeignKeys: []database.ForeignKey{
			{Name: "orders_user_id_fkey", Columns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
		},
	}

	sql, _ := gen.CreateTable(table)

	expected := []string{
		`CREATE TABLE "orders" (`,
		`"id" serial PRIMARY KEY,`,
		`"user_id" integer NOT NULL,`,
		`"created_at" timestamp DEFAULT now(),`,
		`CONSTRAINT "orders_user_id_fkey" FOREIGN KEY ("user_id") REFERENCES "users" ("id")`,
	}
	for _, want := range expected {
		if !strings.Contains(sql, want) {
			t.Errorf("Expected SQL to contain %q, got:\n%s", want, sql)
		}
	}
}

func TestGenerator_FormatLiteral(t *testing.T) {
	gen := NewGenerator()
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		value    any
		expected string
	}{
		{nil, "NULL"},
		{true, "TRUE"},
		{false, "FALSE"},
		{12, "12"},
		{2.25, "2.25"},
		{"it's", "'it''s'"},
		{ts, "'2024-03-01 12:30:00'"},
	}

	for _, tt := range tests {
		if got := gen.FormatLiteral(tt.value); got != tt.expected {
			t.Errorf("FormatLiteral(%v) = %q, expected %q", tt.value, got, tt.expected)
		}
	}
}

func TestGenerator_ParameterPlaceholder(t *testing.T) {
	gen := NewGenerator()
	if got := gen.ParameterPlaceholder(2); got != "$2" {
		t.Errorf("Expected $2, got %s", got)
	}
}

func TestIsSerialDefault(t *testing.T) {
	if !isSerialDefault("nextval('users_id_seq'::regclass)") {
		t.Error("Expected nextval default to be detected as serial")
	}
	if isSerialDefault("0") {
		t.Error("Expected literal default to not be serial")
	}
}

func TestNormalizeDefault(t *testing.T) {
	tests := map[string]string{
		"'{}'::jsonb":    "'{}'",
		"'active'::text": "'active'",
		"now()":          "now()",
		"'a::b'":         "'a::b'",
	}
	for in, want := range tests {
		if got := normalizeDefault(in); got != want {
			t.Errorf("normalizeDefault(%q) = %q, expected %q", in, got, want)
		}
	}
}
