package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MosYCo/test-data-generate/internal/history"
)

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// openHistory opens the execution history database configured in tdg.toml.
func openHistory(ctx context.Context) (*history.Store, error) {
	return history.Open(ctx, appConfig.ResolvePath(appConfig.HistoryPath))
}

// printNoSources prints a hint when tdg.toml has no data sources yet.
func printNoSources(w io.Writer) {
	fmt.Fprintf(w, `No data sources in %s. Add one with the wizard or:

  tdg sources add --name local --type sqlite --file ./app.db
`, appConfig.ConfigFilePath)
}
