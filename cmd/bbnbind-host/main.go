// Command bbnbind-host serves a local host as a go-plugin, for processes
// that set BBN_HOST_PLUGIN to this binary.
package main

import (
	"context"
	"os"

	"github.com/felixgeelhaar/babylon-bindings/internal/app"
	hostplugin "github.com/felixgeelhaar/babylon-bindings/internal/host/plugin"
	"github.com/felixgeelhaar/babylon-bindings/pkg/config"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

func main() {
	// stdout carries the plugin handshake, so logs go to stderr as JSON.
	logCfg := observability.ProductionLogConfig()
	logCfg.ServiceName = "bbnbind-host"
	logger := observability.NewLogger(logCfg)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logger = observability.NewLogger(logCfg)

	// A plugin host always answers from local state.
	cfg.HostAddr = ""
	cfg.HostPlugin = ""

	container, err := app.NewContainer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	hostplugin.Serve(container.Querier, logger)
}
