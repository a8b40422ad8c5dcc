// Package export writes generated datasets to files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gosimple/slug"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/internal/generator"
	"github.com/MosYCo/test-data-generate/internal/task"
)

// Dialect renders SQL for the sql format.
type Dialect interface {
	database.SQLGenerator
	Name() string
}

// Options only apply to the sql format.
type Options struct {
	Dialect Dialect
	// Schema, when set, is written as CREATE TABLE statements before the rows.
	Schema []database.Table
}

// Export writes ds to dir in the given format and returns the written paths.
// csv produces one file per table; every other format produces one file.
func Export(dir, base, format string, ds *generator.Dataset, opts Options) ([]string, error) {
	if !task.IsFormat(format) {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if format == task.FormatSQL && opts.Dialect == nil {
		return nil, fmt.Errorf("sql export needs a database dialect")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := slug.Make(base)
	if name == "" {
		name = "dataset"
	}

	if format == task.FormatCSV {
		paths := make([]string, 0, len(ds.Tables))
		for _, t := range ds.Tables {
			path := filepath.Join(dir, fmt.Sprintf("%s-%s.csv", name, slug.Make(t.Name)))
			if err := writeFile(path, func(f *os.File) error { return writeCSV(f, t) }); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	}

	path := filepath.Join(dir, name+"."+format)
	err := writeFile(path, func(f *os.File) error {
		switch format {
		case task.FormatJSON:
			return writeJSON(f, ds)
		case task.FormatYAML:
			return writeYAML(f, ds)
		case task.FormatXML:
			return writeXML(f, ds)
		default:
			return writeSQL(f, ds, opts)
		}
	})
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// writeFile writes through a temporary file so a failed export leaves no partial output.
func writeFile(path string, write func(f *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tdg-export-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// textValue renders a value for the text based formats. nil becomes "".
func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.UTC().Format(database.TimestampLayout)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// plainValue converts times to strings so structured formats agree with csv.
func plainValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(database.TimestampLayout)
	}
	return v
}

func plainRecords(t *generator.TableData) []map[string]any {
	records := t.Records()
	for _, rec := range records {
		for k, v := range rec {
			rec[k] = plainValue(v)
		}
	}
	return records
}
