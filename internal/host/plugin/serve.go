package plugin

import (
	"log/slog"

	"github.com/hashicorp/go-plugin"

	hostgrpc "github.com/felixgeelhaar/babylon-bindings/internal/host/grpc"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// Serve runs q as a host plugin. It blocks until the loader kills the process.
func Serve(q hostapi.Querier, logger *slog.Logger) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			PluginName: &HostPlugin{Impl: q, Client: hostgrpc.ClientConfig{Logger: logger}},
		},
		GRPCServer: plugin.DefaultGRPCServer,
		Logger:     newHclogAdapter(logger),
	})
}
