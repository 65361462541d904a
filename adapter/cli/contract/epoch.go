package contract

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/example"
)

func newEpochCmd(t *target) *cobra.Command {
	return &cobra.Command{
		Use:   "epoch",
		Short: "Show the current epoch as seen by the contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			addr, err := t.resolve(app)
			if err != nil {
				return err
			}

			resp, err := query[example.CurrentEpochResponse](cmd.Context(), app, addr, example.QueryMsg{
				CurrentEpoch: &example.CurrentEpochQuery{},
			})
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintJSON(cmd, resp)
		},
	}
}
