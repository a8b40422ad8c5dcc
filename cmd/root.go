package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MosYCo/test-data-generate/internal/clierr"
	"github.com/MosYCo/test-data-generate/internal/config"
	"github.com/MosYCo/test-data-generate/internal/logging"
)

var (
	logLevel string
	logFile  string

	appConfig *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "tdg",
	Short: "Generate test data for your database tables",
	Long: `tdg reads the tables of a PostgreSQL, SQLite or libSQL database and
generates consistent test data for them, following foreign keys.

Run it without arguments to start the interactive wizard.`,
	Version:           getVersion(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: runWizard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default from tdg.toml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path; \"-\" logs to stderr (default from tdg.toml)")
}

// setup loads tdg.toml and opens the log file before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", config.FileName, err)
	}
	appConfig = cfg

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	path := cfg.ResolvePath(cfg.LogFile)
	switch logFile {
	case "":
	case "-":
		path = ""
	default:
		path = logFile
	}

	l, closer, err := logging.New(path, level)
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	logger.Debug("configuration loaded", "path", cfg.ConfigFilePath, "command", cmd.CommandPath())
	return nil
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, clierr.Pretty(err))
		os.Exit(1)
	}
}
