package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/wizard"
)

var wizardCmd = &cobra.Command{
	Use:     "wizard",
	Aliases: []string{"init"},
	Short:   "Build and run a generation task interactively",
	Long: `Walk through choosing a data source, reviewing its tables and columns,
previewing generated rows and running the task.

Saved data sources come from tdg.toml; past runs are listed on the last step.`,
	Args: cobra.NoArgs,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	store, err := openHistory(ctx)
	if err != nil {
		// The wizard still works, results just are not kept
		logger.Warn("execution history unavailable", "error", err)
	} else {
		defer func() { _ = store.Close() }()
	}

	return wizard.Run(ctx, wizard.Services{
		Config:  appConfig,
		Sources: datasource.NewRegistry(appConfig),
		History: store,
		Logger:  logger,
	})
}
