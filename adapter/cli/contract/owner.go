package contract

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/example"
)

func newOwnerCmd(t *target) *cobra.Command {
	return &cobra.Command{
		Use:   "owner",
		Short: "Show the contract owner",
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

			resp, err := query[example.OwnerResponse](cmd.Context(), app, addr, example.QueryMsg{Owner: &example.OwnerQuery{}})
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintJSON(cmd, resp)
		},
	}
}
