package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MosYCo/test-data-generate/internal/config"
	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/driver"
)

var sourcesCmd = &cobra.Command{
	Use:     "sources",
	Aliases: []string{"source"},
	Short:   "Manage saved data sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved data sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := datasource.NewRegistry(appConfig).List()
		if len(sources) == 0 {
			printNoSources(cmd.OutOrStdout())
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tTYPE\tADDRESS\tDESCRIPTION")
		for _, ds := range sources {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ds.Key, ds.Name, ds.Type, ds.Address(), ds.Description)
		}
		return w.Flush()
	},
}

var addSource datasource.DataSource

var sourcesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a data source to tdg.toml",
	Long: `Save a data source to tdg.toml. Passwords and auth tokens are read from
the TDG_PASSWORD and TDG_AUTH_TOKEN environment variables and stored in
.env.<key>, never in tdg.toml.`,
	Example: `  # PostgreSQL
  TDG_PASSWORD=secret tdg sources add --name shop --type postgres --host localhost --database shop --user app

  # SQLite file
  tdg sources add --name local --type sqlite --file ./shop.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds := addSource
		ds.Type = driver.NormalizeType(ds.Type)
		if ds.Type == driver.TypePostgres && ds.Port == 0 {
			ds.Port = datasource.DefaultPostgresPort
		}
		if ds.Type != driver.TypePostgres {
			ds.Host = ""
		}
		ds.Password = os.Getenv(config.SecretPassword)
		ds.AuthToken = os.Getenv(config.SecretAuthToken)

		saved, err := datasource.NewRegistry(appConfig).Add(ds)
		if err != nil {
			return err
		}
		logger.Info("data source added", "key", saved.Key, "type", saved.Type)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as %q in %s\n", saved.Redacted(), saved.Key, appConfig.ConfigFilePath)
		return nil
	},
}

var sourcesRemoveCmd = &cobra.Command{
	Use:     "remove <key>",
	Aliases: []string{"rm"},
	Short:   "Remove a saved data source and its secrets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := datasource.NewRegistry(appConfig).Remove(args[0]); err != nil {
			return err
		}
		logger.Info("data source removed", "key", args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var sourcesTestCmd = &cobra.Command{
	Use:   "test <key>",
	Short: "Check that a saved data source is reachable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := datasource.NewRegistry(appConfig).Get(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()
		if err := datasource.TestConnection(ctx, ds); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Connected to %s\n", ds.Redacted())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesListCmd, sourcesAddCmd, sourcesRemoveCmd, sourcesTestCmd)

	f := sourcesAddCmd.Flags()
	f.StringVar(&addSource.Name, "name", "", "Display name (also used to derive the key)")
	f.StringVar(&addSource.Type, "type", driver.TypePostgres, "Database type: postgres, sqlite or libsql")
	f.StringVar(&addSource.Host, "host", "localhost", "PostgreSQL host")
	f.IntVar(&addSource.Port, "port", 0, "PostgreSQL port (default 5432)")
	f.StringVar(&addSource.Database, "database", "", "PostgreSQL database name")
	f.StringVar(&addSource.User, "user", "", "PostgreSQL user")
	f.StringVar(&addSource.FilePath, "file", "", "SQLite database file")
	f.StringVar(&addSource.URL, "url", "", "libSQL database URL")
	f.StringVar(&addSource.Charset, "charset", datasource.DefaultCharset, "Character set for generated text")
	f.StringVar(&addSource.Description, "description", "", "Free-form description")
	_ = sourcesAddCmd.MarkFlagRequired("name")
}
