// Package plugin runs the host querier out of process with HashiCorp
// go-plugin. The plugin side serves a hostapi.Querier over the querier gRPC
// service; the loading side gets back a hostapi.Querier.
package plugin

import (
	"context"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"

	hostgrpc "github.com/felixgeelhaar/babylon-bindings/internal/host/grpc"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// HandshakeConfig must match between the loader and the host binary.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "BBN_HOST_PLUGIN",
	MagicCookieValue: "babylon-host-v1",
}

// PluginName is the key the querier is dispensed under.
const PluginName = "host"

// PluginMap returns the plugins a loader can dispense, with clients built
// from cfg.
func PluginMap(cfg hostgrpc.ClientConfig) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{PluginName: &HostPlugin{Client: cfg}}
}

var _ plugin.GRPCPlugin = (*HostPlugin)(nil)

// HostPlugin is the plugin.Plugin implementation for the host querier.
type HostPlugin struct {
	plugin.Plugin
	// Impl is the concrete querier (plugin side).
	Impl hostapi.Querier
	// Client configures the querier handed to the loader (host side).
	Client hostgrpc.ClientConfig
}

func (p *HostPlugin) GRPCServer(_ *plugin.GRPCBroker, s *grpc.Server) error {
	hostgrpc.RegisterQuerierServer(s, hostgrpc.NewServer(p.Impl, p.Client.Logger))
	return nil
}

func (p *HostPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, c *grpc.ClientConn) (interface{}, error) {
	return hostgrpc.NewClient(c, p.Client), nil
}
