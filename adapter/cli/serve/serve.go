// Package serve runs the long-lived servers: the gRPC querier service
// other processes dial, and the MCP endpoint.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	hostgrpc "github.com/felixgeelhaar/babylon-bindings/internal/host/grpc"
	mcpinternal "github.com/felixgeelhaar/babylon-bindings/internal/mcp"
	"github.com/felixgeelhaar/babylon-bindings/pkg/config"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

// Cmd is the serve command group
var Cmd = NewCmd()

// NewCmd builds the serve command group.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the querier service or the MCP endpoint",
	}
	cmd.AddCommand(newGRPCCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newAllCmd())
	return cmd
}

func newGRPCCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "grpc",
		Short: "Serve the host querier over gRPC",
		Long: `Serve the host querier over gRPC so other processes can point
BBN_HOST_ADDR at it. Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			return ServeGRPC(cmd.Context(), app, listenAddr(addr, app.Config, grpcAddr))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $BBN_GRPC_ADDR)")
	return cmd
}

func newMCPCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}
			return serveMCP(cmd.Context(), app, listenAddr(addr, app.Config, mcpAddr))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $MCP_ADDR)")
	return cmd
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Serve gRPC and MCP together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.RequireApp()
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return ServeGRPC(ctx, app, listenAddr("", app.Config, grpcAddr))
			})
			g.Go(func() error {
				return serveMCP(ctx, app, listenAddr("", app.Config, mcpAddr))
			})
			return g.Wait()
		},
	}
}

// ServeGRPC serves app's querier on addr until ctx is done.
func ServeGRPC(ctx context.Context, app *cli.App, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return serveListener(ctx, app, lis)
}

func serveListener(ctx context.Context, app *cli.App, lis net.Listener) error {
	srv := hostgrpc.NewServer(app.Querier, observability.Component(cli.Logger(), "grpc"))
	return srv.Serve(ctx, lis)
}

func serveMCP(ctx context.Context, app *cli.App, addr string) error {
	cfg := config.Config{}
	if app.Config != nil {
		cfg = *app.Config
	}
	cfg.MCPAddr = addr

	err := mcpinternal.Serve(ctx, &cfg, app, observability.Component(cli.Logger(), "mcp"))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type addrKind int

const (
	grpcAddr addrKind = iota
	mcpAddr
)

func listenAddr(flag string, cfg *config.Config, kind addrKind) string {
	if flag != "" {
		return flag
	}
	if cfg != nil {
		switch kind {
		case grpcAddr:
			if cfg.GRPCAddr != "" {
				return cfg.GRPCAddr
			}
		case mcpAddr:
			if cfg.MCPAddr != "" {
				return cfg.MCPAddr
			}
		}
	}
	if kind == mcpAddr {
		return "127.0.0.1:8082"
	}
	return "127.0.0.1:9090"
}
