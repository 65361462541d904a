// Package contract drives the example contract through the host.
package contract

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// Cmd is the contract command group
var Cmd = NewCmd()

type target struct {
	label   string
	address string
}

// NewCmd builds the contract command group.
func NewCmd() *cobra.Command {
	var t target

	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Instantiate and query the example contract",
		Long: `Instantiate the example contract and call its query routes. The
contract address is derived from --label unless --address is given, which
also works against a remote host.`,
	}
	cmd.PersistentFlags().StringVar(&t.label, "label", "default", "deployment label of the example contract")
	cmd.PersistentFlags().StringVar(&t.address, "address", "", "query the contract at this address instead")

	cmd.AddCommand(newInstantiateCmd(&t))
	cmd.AddCommand(newOwnerCmd(&t))
	cmd.AddCommand(newChainCmd(&t))
	cmd.AddCommand(newEpochCmd(&t))
	return cmd
}

func (t *target) resolve(app *cli.App) (string, error) {
	if t.address != "" {
		return t.address, nil
	}
	return app.ExampleContract(t.label)
}

// query sends msg to the contract's query entry point through the host, so
// the call takes the same path a contract-to-contract query would.
func query[T any](ctx context.Context, app *cli.App, addr string, msg any) (T, error) {
	var zero T
	req, err := hostapi.NewSmartQuery(addr, msg)
	if err != nil {
		return zero, err
	}
	return hostapi.Query[T](ctx, app.Host, req)
}
