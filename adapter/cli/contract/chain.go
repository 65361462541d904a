package contract

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/example"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

func newChainCmd(t *target) *cobra.Command {
	return &cobra.Command{
		Use:   "chain <request-json>",
		Short: "Have the contract forward a query to the chain",
		Long: `Ask the contract to send request to the host on its behalf and print
the reply it hands back.

Examples:
  bbnbind contract chain '{"custom":{"btc_tip":{}}}'
  bbnbind contract chain '{"bank":{"balance":{"address":"bbn1...","denom":"ubbn"}}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var request hostapi.QueryRequest
			if err := json.Unmarshal([]byte(args[0]), &request); err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}
			if _, err := request.Route(); err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}

			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			addr, err := t.resolve(app)
			if err != nil {
				return err
			}

			resp, err := query[example.ChainResponse](cmd.Context(), app, addr, example.QueryMsg{
				Chain: &example.ChainQuery{Request: request},
			})
			if err != nil {
				return cli.DescribeError(err)
			}
			return cli.PrintRaw(cmd, resp.Data)
		},
	}
}
