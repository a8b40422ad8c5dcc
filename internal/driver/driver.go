// Package driver maps data source types and connection strings onto the
// database/sql driver names and dialect implementations used by tdg.
package driver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/database/postgres"
	"github.com/MosYCo/test-data-generate/database/sqlite"
)

// Supported data source types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
	TypeLibSQL   = "libsql"
)

// Types lists the supported data source types in display order
var Types = []string{TypePostgres, TypeSQLite, TypeLibSQL}

// NewDriver creates a new database driver based on the data source type.
func NewDriver(databaseType string) (database.Driver, error) {
	switch NormalizeType(databaseType) {
	case TypePostgres:
		return postgres.NewDriver(), nil
	case TypeSQLite:
		return sqlite.NewDriver(), nil
	case TypeLibSQL:
		return sqlite.NewLibSQLDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", databaseType)
	}
}

// NormalizeType folds the aliases users commonly type into a canonical type.
func NormalizeType(databaseType string) string {
	switch strings.ToLower(strings.TrimSpace(databaseType)) {
	case "postgres", "postgresql", "pg":
		return TypePostgres
	case "sqlite", "sqlite3":
		return TypeSQLite
	case "libsql", "turso":
		return TypeLibSQL
	default:
		return strings.ToLower(strings.TrimSpace(databaseType))
	}
}

// DetectDriver guesses the data source type from a connection string.
func DetectDriver(connStr string) string {
	lower := strings.ToLower(connStr)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return TypePostgres
	case strings.HasPrefix(lower, "libsql://"), strings.HasPrefix(lower, "wss://"), strings.HasPrefix(lower, "https://"):
		return TypeLibSQL
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"),
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"),
		strings.HasSuffix(lower, ".sqlite3"), lower == ":memory:":
		return TypeSQLite
	default:
		return TypePostgres
	}
}

// SQLDriverName returns the database/sql driver name registered for a type.
func SQLDriverName(databaseType string) string {
	switch NormalizeType(databaseType) {
	case TypeSQLite:
		return "sqlite"
	case TypeLibSQL:
		return "libsql"
	default:
		return "postgres"
	}
}

// Open opens a connection for the given type and verifies it with a ping.
// The caller owns the returned handle.
func Open(ctx context.Context, databaseType, connStr string) (*sql.DB, error) {
	if NormalizeType(databaseType) == TypeSQLite {
		connStr = strings.TrimPrefix(connStr, "sqlite://")
	}

	db, err := sql.Open(SQLDriverName(databaseType), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	if NormalizeType(databaseType) != TypePostgres {
		// SQLite allows a single writer; also keeps :memory: on one connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
