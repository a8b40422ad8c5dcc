package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MosYCo/test-data-generate/internal/datasource"
)

var (
	introspectSource string
	introspectFormat string
)

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Print the tables of a saved data source",
	Long: `Read tables, columns, indexes and foreign keys from a saved data source
and print them as JSON or YAML. This is the schema the wizard starts from.`,
	Example: `  tdg introspect --source shop
  tdg introspect --source shop --format yaml > shop-schema.yaml`,
	Args: cobra.NoArgs,
	RunE: runIntrospect,
}

func init() {
	rootCmd.AddCommand(introspectCmd)

	introspectCmd.Flags().StringVarP(&introspectSource, "source", "s", "", "Key of the saved data source")
	introspectCmd.Flags().StringVar(&introspectFormat, "format", "json", "Output format: json or yaml")
	_ = introspectCmd.MarkFlagRequired("source")
}

func runIntrospect(cmd *cobra.Command, args []string) error {
	if introspectFormat != "json" && introspectFormat != "yaml" {
		return fmt.Errorf("unsupported format %q (expected json or yaml)", introspectFormat)
	}

	ds, err := datasource.NewRegistry(appConfig).Get(introspectSource)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	schema, err := datasource.Introspect(ctx, ds)
	if err != nil {
		return err
	}
	logger.Info("introspected data source", "source", ds.Key, "tables", len(schema.Tables))

	out := cmd.OutOrStdout()
	if introspectFormat == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(schema); err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(schema)
}
