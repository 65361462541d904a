package query

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

func newEpochCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "epoch",
		Short: "Show the current epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			epoch, err := app.Babylon.CurrentEpoch(cmd.Context())
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintJSON(cmd, bindings.CurrentEpochResponse{Epoch: epoch})
		},
	}
}

func newFinalizedEpochCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalized-epoch",
		Short: "Show the latest finalized epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			info, err := app.Babylon.LatestFinalizedEpochInfo(cmd.Context())
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintJSON(cmd, bindings.LatestFinalizedEpochInfoResponse{EpochInfo: info})
		},
	}
}

func newBtcTipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "btc-tip",
		Short: "Show the best BTC header known to the light client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			info, err := app.Babylon.BtcTip(cmd.Context())
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintJSON(cmd, bindings.BtcTipResponse{HeaderInfo: info})
		},
	}
}

func newBtcBaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "btc-base",
		Short: "Show the BTC header the light client starts from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			info, err := app.Babylon.BtcBaseHeader(cmd.Context())
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintJSON(cmd, bindings.BtcBaseHeaderResponse{HeaderInfo: info})
		},
	}
}

func newBtcHeaderCmd() *cobra.Command {
	var (
		height uint64
		hash   string
	)

	cmd := &cobra.Command{
		Use:   "btc-header",
		Short: "Look up a BTC header by height or hash",
		Long: `Look up a BTC header known to the light client. Prints
{"header_info": null} when the host has no such header.

Examples:
  bbnbind query btc-header --height 840000
  bbnbind query btc-header --hash 000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byHeight := cmd.Flags().Changed("height")
			if byHeight == (hash != "") {
				return fmt.Errorf("exactly one of --height or --hash is required")
			}

			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			var info *bindings.BtcBlockHeaderInfo
			if byHeight {
				info, err = app.Babylon.BtcHeaderByHeight(cmd.Context(), height)
			} else {
				info, err = app.Babylon.BtcHeaderByHash(cmd.Context(), hash)
			}
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintJSON(cmd, bindings.BtcHeaderQueryResponse{HeaderInfo: info})
		},
	}

	cmd.Flags().Uint64Var(&height, "height", 0, "BTC block height")
	cmd.Flags().StringVar(&hash, "hash", "", "BTC block hash, hex in display order")
	return cmd
}
