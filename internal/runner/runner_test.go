package runner

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/history"
	"github.com/MosYCo/test-data-generate/internal/task"
)

func setupShop(t *testing.T) (string, task.Config) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "shop.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL UNIQUE);
		CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL REFERENCES users(id), total REAL);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := task.Config{
		Name:         "Shop Seed",
		Language:     "en",
		DataSource:   datasource.DataSource{Name: "shop", Type: "sqlite", FilePath: dbPath},
		ExportFormat: task.FormatSQL,
		Seed:         42,
		Tables: []task.TableSpec{
			{Name: "orders", RowCount: 12, Columns: []task.ColumnSpec{
				{Name: "id", Type: "INTEGER", IsPrimaryKey: true, GenerationRule: "auto_increment"},
				{Name: "user_id", Type: "INTEGER", IsForeignKey: true, ForeignKeyTable: "users", ForeignKeyColumn: "id", GenerationRule: "reference"},
				{Name: "total", Type: "REAL", GenerationRule: "random"},
			}},
			{Name: "users", RowCount: 4, Columns: []task.ColumnSpec{
				{Name: "id", Type: "INTEGER", IsPrimaryKey: true, GenerationRule: "auto_increment"},
				{Name: "email", Type: "TEXT", Unique: true, GenerationRule: "random"},
			}},
		},
	}
	return dir, cfg
}

func openHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunExportsAndRecords(t *testing.T) {
	dir, cfg := setupShop(t)
	store := openHistory(t)
	ctx := context.Background()

	res, err := Run(ctx, cfg, Options{OutputDir: filepath.Join(dir, "out"), History: store})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 16, res.RowsWritten)
	assert.Zero(t, res.RowsLoaded)
	assert.False(t, res.EndTime.Before(res.StartTime))
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, ".sql", filepath.Ext(res.Artifacts[0]))
	_, err = os.Stat(res.Artifacts[0])
	require.NoError(t, err)

	stored, err := store.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, stored.Success)
	assert.Equal(t, "Shop Seed", stored.Configuration.Name)
	assert.Equal(t, int64(42), stored.Configuration.Seed)
}

func TestRunIncludeSchemaWritesRunnableScript(t *testing.T) {
	dir, cfg := setupShop(t)
	cfg.IncludeSchema = true
	ctx := context.Background()

	res, err := Run(ctx, cfg, Options{OutputDir: filepath.Join(dir, "out")})
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)

	script, err := os.ReadFile(res.Artifacts[0])
	require.NoError(t, err)

	fresh, err := sql.Open("sqlite", filepath.Join(dir, "fresh.db"))
	require.NoError(t, err)
	defer func() { _ = fresh.Close() }()
	fresh.SetMaxOpenConns(1)
	_, err = fresh.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = fresh.ExecContext(ctx, string(script))
	require.NoError(t, err)

	var orders int
	require.NoError(t, fresh.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orders))
	assert.Equal(t, 12, orders)
}

func TestRunLoadsIntoDataSource(t *testing.T) {
	dir, cfg := setupShop(t)
	cfg.ExportFormat = task.FormatCSV
	ctx := context.Background()

	res, err := Run(ctx, cfg, Options{OutputDir: filepath.Join(dir, "out"), Load: true})
	require.NoError(t, err)
	assert.Equal(t, int64(16), res.RowsLoaded)
	assert.Len(t, res.Artifacts, 2)

	db, err := sql.Open("sqlite", cfg.DataSource.FilePath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var orphans int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders WHERE user_id NOT IN (SELECT id FROM users)`).Scan(&orphans))
	assert.Zero(t, orphans)

	var users int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	assert.Equal(t, 4, users)
}

func TestRunRecordsFailures(t *testing.T) {
	dir, cfg := setupShop(t)
	cfg.Name = ""
	store := openHistory(t)
	ctx := context.Background()

	res, err := Run(ctx, cfg, Options{OutputDir: filepath.Join(dir, "out"), History: store})
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "task name is required")

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ID, list[0].ID)
	assert.False(t, list[0].Success)
}

func TestRunAssignsSeed(t *testing.T) {
	dir, cfg := setupShop(t)
	cfg.Seed = 0

	res, err := Run(context.Background(), cfg, Options{OutputDir: filepath.Join(dir, "out")})
	require.NoError(t, err)
	assert.NotZero(t, res.Configuration.Seed)
}

func TestRunLoadFailureRollsBackTable(t *testing.T) {
	dir, cfg := setupShop(t)
	// Every email identical violates the UNIQUE constraint in the database
	cfg.Tables[1].Columns[1] = task.ColumnSpec{Name: "email", Type: "TEXT", GenerationRule: "fixed:same@example.com"}

	res, err := Run(context.Background(), cfg, Options{OutputDir: filepath.Join(dir, "out"), Load: true})
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.ErrorMessage, "load failed")

	db, err := sql.Open("sqlite", cfg.DataSource.FilePath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var users int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	assert.Zero(t, users)
}
