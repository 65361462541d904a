package query

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
)

func newRawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raw <request-json>",
		Short: "Send a raw query request",
		Long: `Send a query request exactly as given and print the reply bytes.

Examples:
  bbnbind query raw '{"custom":{"epoch":{}}}'
  bbnbind query raw '{"bank":{"all_balances":{"address":"bbn1..."}}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			data, err := app.Host.RawQueryBytes(cmd.Context(), []byte(args[0]))
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintRaw(cmd, data)
		},
	}
}
