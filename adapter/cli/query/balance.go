package query

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

func newBalanceCmd() *cobra.Command {
	var denom string

	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "Show an account's bank balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if denom != "" {
				coin, err := app.Host.QueryBalance(ctx, args[0], denom)
				if err != nil {
					return cli.DescribeError(err)
				}
				return cli.PrintJSON(cmd, hostapi.BalanceResponse{Amount: coin})
			}

			coins, err := app.Host.QueryAllBalances(ctx, args[0])
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintJSON(cmd, hostapi.AllBalanceResponse{Amount: coins})
		},
	}

	cmd.Flags().StringVar(&denom, "denom", "", "only show this denomination")
	return cmd
}
