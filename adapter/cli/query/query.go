// Package query holds the commands that send queries to the host.
package query

import (
	"github.com/spf13/cobra"
)

// Cmd is the query command group
var Cmd = NewCmd()

// NewCmd builds the query command group.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the host",
		Long: `Send Babylon custom queries, bank queries or raw query requests to the
host and print the decoded replies as JSON.`,
		Aliases: []string{"q"},
	}
	cmd.AddCommand(newEpochCmd())
	cmd.AddCommand(newFinalizedEpochCmd())
	cmd.AddCommand(newBtcTipCmd())
	cmd.AddCommand(newBtcBaseCmd())
	cmd.AddCommand(newBtcHeaderCmd())
	cmd.AddCommand(newBalanceCmd())
	cmd.AddCommand(newRawCmd())
	return cmd
}
