package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backends and host the CLI is wired to",
		Long: `Run every registered health check (database, Redis, remote host) and
print the combined report as JSON. Exits non-zero when any required check
is unhealthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := RequireApp()
			if err != nil {
				return err
			}

			report := app.Health.GetOverallHealth(cmd.Context())
			if err := PrintJSON(cmd, report); err != nil {
				return err
			}
			if report.Status == observability.HealthStatusUnhealthy {
				return fmt.Errorf("host is %s", report.Status)
			}
			return nil
		},
	}
}
