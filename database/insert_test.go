package database_test

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/database/postgres"
	"github.com/MosYCo/test-data-generate/database/sqlite"
)

func TestInsertStatement(t *testing.T) {
	gen := postgres.NewGenerator()
	got := database.InsertStatement(gen, "users", []string{"id", "name"}, []any{1, "Ada"})
	want := `INSERT INTO "users" ("id", "name") VALUES (1, 'Ada')`
	if got != want {
		t.Errorf("InsertStatement() = %q, expected %q", got, want)
	}
}

func TestPreparedInsert(t *testing.T) {
	got := database.PreparedInsert(postgres.NewGenerator(), "users", []string{"id", "name"})
	want := `INSERT INTO "users" ("id", "name") VALUES ($1, $2)`
	if got != want {
		t.Errorf("PreparedInsert() = %q, expected %q", got, want)
	}

	got = database.PreparedInsert(sqlite.NewGenerator(), "users", []string{"id"})
	want = `INSERT INTO "users" ("id") VALUES (?)`
	if got != want {
		t.Errorf("PreparedInsert() = %q, expected %q", got, want)
	}
}

func TestInsertRows(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	rows := [][]any{{1, "Ada"}, {2, "Grace"}}
	n, err := database.InsertRows(ctx, db, sqlite.NewGenerator(), "users", []string{"id", "name"}, rows)
	if err != nil {
		t.Fatalf("InsertRows failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows written, got %d", n)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 rows in table, got %d", count)
	}
}

func TestInsertRows_RollsBackOnError(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	// Duplicate primary key fails the second insert
	rows := [][]any{{1, "Ada"}, {1, "Grace"}}
	if _, err := database.InsertRows(ctx, db, sqlite.NewGenerator(), "users", []string{"id", "name"}, rows); err == nil {
		t.Fatal("Expected error for duplicate primary key")
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback to leave 0 rows, got %d", count)
	}
}
