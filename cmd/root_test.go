package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/task"
)

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}
	if rootCmd.Use != "tdg" {
		t.Errorf("expected Use to be 'tdg', got %q", rootCmd.Use)
	}
	if rootCmd.Version == "" {
		t.Error("rootCmd.Version should not be empty")
	}
}

func TestCommandsRegistered(t *testing.T) {
	expectedCommands := map[string]bool{
		"wizard":     false,
		"sources":    false,
		"introspect": false,
		"generate":   false,
		"results":    false,
		"version":    false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, exists := expectedCommands[cmd.Name()]; exists {
			expectedCommands[cmd.Name()] = true
		}
	}

	for cmdName, registered := range expectedCommands {
		if !registered {
			t.Errorf("expected command %q to be registered", cmdName)
		}
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func createShopDB(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	_, err = db.Exec(`
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER NOT NULL REFERENCES users(id), total REAL);
`)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

func TestSourcesGenerateAndResults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	createShopDB(t, filepath.Join(dir, "shop.db"))

	out, err := runCLI(t, "sources", "add", "--name", "Local Shop", "--type", "sqlite", "--file", "shop.db", "--log-file", "-")
	if err != nil {
		t.Fatalf("sources add failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"local-shop"`) {
		t.Errorf("expected key local-shop in output, got %q", out)
	}

	out, err = runCLI(t, "sources", "list")
	if err != nil {
		t.Fatalf("sources list failed: %v", err)
	}
	if !strings.Contains(out, "local-shop") || !strings.Contains(out, "sqlite") {
		t.Errorf("expected source in list, got %q", out)
	}

	out, err = runCLI(t, "introspect", "--source", "local-shop", "--format", "yaml")
	if err != nil {
		t.Fatalf("introspect failed: %v", err)
	}
	if !strings.Contains(out, "name: orders") || !strings.Contains(out, "referenced_table: users") {
		t.Errorf("expected orders with a foreign key, got %q", out)
	}

	ds := datasource.DataSource{Key: "local-shop", Name: "Local Shop", Type: "sqlite", FilePath: "shop.db"}
	schema, err := datasource.Introspect(context.Background(), ds)
	if err != nil {
		t.Fatal(err)
	}
	cfg := task.New()
	cfg.Name = "nightly"
	cfg.DataSource = ds
	cfg.MergeSchema(schema)
	taskPath := filepath.Join(dir, "nightly.task.yaml")
	if err := cfg.Save(taskPath); err != nil {
		t.Fatal(err)
	}

	out, err = runCLI(t, "generate", "--task", taskPath, "--format", "csv", "--seed", "7", "--output", "out")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "generated 20 rows") || !strings.Contains(out, "seed 7") {
		t.Errorf("unexpected generate output %q", out)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "out", "*.csv"))
	if len(matches) != 2 {
		t.Errorf("expected one csv per table, got %v", matches)
	}

	out, err = runCLI(t, "results", "list")
	if err != nil {
		t.Fatalf("results list failed: %v", err)
	}
	if !strings.Contains(out, "nightly") || !strings.Contains(out, "success") {
		t.Errorf("expected the run in results, got %q", out)
	}

	out, err = runCLI(t, "sources", "remove", "local-shop")
	if err != nil {
		t.Fatalf("sources remove failed: %v", err)
	}
	if _, err := runCLI(t, "sources", "test", "local-shop"); err == nil {
		t.Error("expected testing a removed source to fail")
	}
}

func TestResultsShowUnknownID(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := runCLI(t, "results", "show", "missing"); err == nil {
		t.Error("expected an error for an unknown execution")
	}
}
