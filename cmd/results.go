package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MosYCo/test-data-generate/internal/history"
)

var resultsLimit int

var resultsCmd = &cobra.Command{
	Use:     "results",
	Aliases: []string{"history"},
	Short:   "Inspect past executions",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List executions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		store, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		results, err := store.List(ctx)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No executions recorded yet.")
			return nil
		}
		if resultsLimit > 0 && len(results) > resultsLimit {
			results = results[:resultsLimit]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tTASK\tFORMAT\tROWS\tSTATUS\tDURATION")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				r.ID, r.StartTime.Format(time.DateTime), r.Configuration.Name, r.Format,
				r.RowsWritten, r.Status(), r.Duration().Round(time.Millisecond))
		}
		return w.Flush()
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an execution with its task configuration as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		store, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		r, err := store.Get(ctx, args[0])
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("%w: %s", err, args[0])
		}
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	},
}

var resultsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an execution from the history",
	Long:    "Delete an execution from the history. Generated files are left in place.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		store, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.Delete(ctx, args[0]); err != nil {
			return fmt.Errorf("%w: %s", err, args[0])
		}
		logger.Info("execution deleted", "id", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(resultsListCmd, resultsShowCmd, resultsDeleteCmd)
	resultsListCmd.Flags().IntVarP(&resultsLimit, "limit", "n", 20, "Show at most this many executions (0 for all)")
}
