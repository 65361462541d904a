package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/hashicorp/go-plugin"

	hostgrpc "github.com/felixgeelhaar/babylon-bindings/internal/host/grpc"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// Loaded is a running host plugin.
type Loaded struct {
	Querier hostapi.Querier
	client  *plugin.Client
}

// Kill stops the plugin process.
func (l *Loaded) Kill() {
	l.client.Kill()
}

// Load starts the host binary at path and dispenses its querier.
func Load(ctx context.Context, path string, cfg hostgrpc.ClientConfig) (*Loaded, error) {
	abs, err := validateBinaryPath(path)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Logger.Info("loading host plugin", "binary", abs)

	// #nosec G204 -- path is validated by validateBinaryPath
	cmd := exec.CommandContext(ctx, abs)
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		Plugins:          PluginMap(cfg),
		Cmd:              cmd,
		Logger:           newHclogAdapter(cfg.Logger),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("host plugin %s: connect: %w", abs, err)
	}
	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("host plugin %s: dispense: %w", abs, err)
	}
	q, ok := raw.(hostapi.Querier)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("host plugin %s: %T is not a querier", abs, raw)
	}
	return &Loaded{Querier: q, client: client}, nil
}

func validateBinaryPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("host plugin: empty binary path")
	}
	abs, err := security.ValidateExecutable(path)
	if err != nil {
		return "", fmt.Errorf("host plugin: %w", err)
	}
	return abs, nil
}
