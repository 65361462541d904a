// Package schema exports the JSON Schemas of the query catalog and the
// example contract's messages.
package schema

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/pkg/schema"
)

// DefaultDir is used when neither --out nor BBN_SCHEMA_DIR is set.
const DefaultDir = "schema"

// Cmd is the schema command group
var Cmd = NewCmd()

// NewCmd builds the schema command group.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export message schemas",
	}
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newListCmd())
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every schema into a directory",
		Long: `Write one JSON Schema document per message into the output directory.
JSON files already in the directory are removed first.

Examples:
  bbnbind schema export
  bbnbind schema export --out ./schema`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := out
			if dir == "" {
				dir = DefaultDir
				if app := cli.GetApp(); app != nil && app.Config != nil && app.Config.SchemaDir != "" {
					dir = app.Config.SchemaDir
				}
			}

			written, err := schema.Export(dir, cli.Schemas(), cli.Logger())
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default $BBN_SCHEMA_DIR or ./schema)")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a single schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, e := range cli.Schemas() {
				if e.Name != args[0] {
					continue
				}
				s, err := schema.Generate(e)
				if err != nil {
					return err
				}
				return cli.PrintJSON(cmd, s)
			}
			return fmt.Errorf("unknown schema %q, see 'bbnbind schema list'", args[0])
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List schema names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, e := range cli.Schemas() {
				fmt.Fprintln(cmd.OutOrStdout(), e.Name)
			}
		},
	}
}
