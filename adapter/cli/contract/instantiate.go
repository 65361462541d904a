package contract

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/internal/app"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/example"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
)

type instantiateResult struct {
	Address    string            `json:"address"`
	Attributes map[string]string `json:"attributes"`
}

func newInstantiateCmd(t *target) *cobra.Command {
	var sender string

	cmd := &cobra.Command{
		Use:   "instantiate",
		Short: "Instantiate the example contract",
		Long: `Instantiate the example contract under --label. The sender becomes the
contract owner. Fails when the label already holds an instantiated contract.

Examples:
  bbnbind contract instantiate --sender bbn1creator
  bbnbind contract instantiate --sender bbn1creator --label staging`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cli.RequireApp()
			if err != nil {
				return err
			}
			if a.Executor == nil {
				return app.ErrRemoteMode
			}

			addr, err := a.ExampleContract(t.label)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			existing, err := a.Executor.ReadRaw(ctx, addr, example.Config.Key())
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: %s", sdk.ErrContractAlreadyExists, addr)
			}

			msg, err := json.Marshal(example.InstantiateMsg{})
			if err != nil {
				return err
			}
			resp, err := a.Executor.Instantiate(ctx, addr, sdk.MessageInfo{Sender: sender}, msg)
			if err != nil {
				return err
			}

			attrs := make(map[string]string, len(resp.Attributes))
			for _, attr := range resp.Attributes {
				attrs[attr.Key] = attr.Value
			}
			return cli.PrintJSON(cmd, instantiateResult{Address: addr, Attributes: attrs})
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "address instantiating the contract (required)")
	_ = cmd.MarkFlagRequired("sender")
	return cmd
}
