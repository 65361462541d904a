package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

var (
	verbose bool
	logger  *slog.Logger
)

type commandContext struct {
	correlationID string
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCmd()

// NewRootCmd builds a fresh command tree root. Execute uses the package
// level one; tests build their own so flag state does not leak.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bbnbind",
		Short: "bbnbind - Babylon custom query bindings",
		Long: `bbnbind runs and inspects the Babylon custom query bindings.

It answers the Babylon queries (epochs, BTC light client headers) against a
local chain state or a remote host, drives the example contract, and exports
the JSON Schemas of every message.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = observability.WithCorrelationID(ctx, "")
			info := commandContext{
				correlationID: observability.CorrelationIDFromContext(ctx),
				startedAt:     time.Now(),
			}
			cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
			Logger().Debug("command start",
				"command", cmd.CommandPath(),
				observability.CorrelationIDKey, info.correlationID,
			)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
			if !ok {
				return
			}
			Logger().Debug("command end",
				"command", cmd.CommandPath(),
				observability.CorrelationIDKey, info.correlationID,
				observability.DurationKey, time.Since(info.startedAt).Milliseconds(),
			)
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Logger returns the CLI logger, or the default one if none was set.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}
