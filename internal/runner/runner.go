// Package runner executes a task end to end: generate, export, optionally
// load into the data source, and record the outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/driver"
	"github.com/MosYCo/test-data-generate/internal/export"
	"github.com/MosYCo/test-data-generate/internal/generator"
	"github.com/MosYCo/test-data-generate/internal/history"
	"github.com/MosYCo/test-data-generate/internal/logging"
	"github.com/MosYCo/test-data-generate/internal/task"
)

// Options control a run.
type Options struct {
	OutputDir string
	// Load inserts the generated rows into the task's data source.
	Load bool
	// History receives the result when set.
	History *history.Store
	Logger  *slog.Logger
}

// Run executes cfg. The returned result describes the run whether or not it
// succeeded; the error is the cause of a failed run, or a failure to record it.
func Run(ctx context.Context, cfg task.Config, opts Options) (history.ExecutionResult, error) {
	logger := logging.OrDiscard(opts.Logger).With("component", "runner")

	if cfg.ExportFormat == "" {
		cfg.ExportFormat = task.FormatJSON
	}
	if cfg.Seed == 0 {
		// Recorded so the run can be reproduced from history
		cfg.Seed = time.Now().UnixNano()
	}

	result := history.ExecutionResult{
		ID:            xid.New().String(),
		StartTime:     time.Now(),
		Format:        cfg.ExportFormat,
		Configuration: cfg,
	}
	logger = logger.With("execution", result.ID, "task", cfg.Name)
	logger.Info("execution started", "format", cfg.ExportFormat, "tables", len(cfg.Tables), "load", opts.Load)

	runErr := execute(ctx, cfg, opts, &result, logger)

	result.EndTime = time.Now()
	result.Success = runErr == nil
	if runErr != nil {
		result.ErrorMessage = runErr.Error()
		logger.Error("execution failed", "error", runErr)
	} else {
		logger.Info("execution finished", "rows", result.RowsWritten, "duration", result.Duration())
	}

	if opts.History != nil {
		// Record even when ctx was cancelled
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := opts.History.Save(saveCtx, result); err != nil {
			return result, errors.Join(runErr, fmt.Errorf("failed to record execution: %w", err))
		}
	}
	return result, runErr
}

func execute(ctx context.Context, cfg task.Config, opts Options, result *history.ExecutionResult, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	drv, err := driver.NewDriver(cfg.DataSource.Type)
	if err != nil {
		return err
	}

	ds, err := generator.Generate(ctx, cfg.Tables, generator.Options{
		Seed:     cfg.Seed,
		Language: cfg.Language,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	result.RowsWritten = ds.TotalRows()

	exportOpts := export.Options{Dialect: drv}
	if cfg.IncludeSchema {
		exportOpts.Schema = cfg.DatabaseTables()
	}
	paths, err := export.Export(opts.OutputDir, cfg.Name+"-"+result.ID, cfg.ExportFormat, ds, exportOpts)
	result.Artifacts = paths
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if opts.Load {
		loaded, err := Load(ctx, cfg.DataSource, drv, ds)
		result.RowsLoaded = loaded
		if err != nil {
			return fmt.Errorf("load failed: %w", err)
		}
		logger.Info("rows loaded", "rows", loaded)
	}
	return nil
}

// Load inserts the dataset into the data source table by table, parents first.
func Load(ctx context.Context, src datasource.DataSource, gen database.SQLGenerator, ds *generator.Dataset) (int64, error) {
	db, err := datasource.Open(ctx, src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	var total int64
	for _, t := range ds.Tables {
		n, err := database.InsertRows(ctx, db, gen, t.Name, t.Columns, t.Rows)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
