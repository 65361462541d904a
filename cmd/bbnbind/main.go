package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/babylon-bindings/adapter/cli"
	"github.com/felixgeelhaar/babylon-bindings/adapter/cli/contract"
	"github.com/felixgeelhaar/babylon-bindings/adapter/cli/query"
	"github.com/felixgeelhaar/babylon-bindings/adapter/cli/schema"
	"github.com/felixgeelhaar/babylon-bindings/adapter/cli/serve"
	"github.com/felixgeelhaar/babylon-bindings/internal/app"
	"github.com/felixgeelhaar/babylon-bindings/pkg/config"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

func main() {
	// Setup logger
	logger := observability.NewLogger(observability.DefaultLogConfig())

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	logCfg.ServiceVersion = cli.Version
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	// Commands that need no host (schema, version) still work when the
	// container cannot be built in development.
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cli.SetApp(cli.NewApp(container))
	}

	// Register commands
	cli.AddCommand(query.Cmd)
	cli.AddCommand(contract.Cmd)
	cli.AddCommand(schema.Cmd)
	cli.AddCommand(serve.Cmd)

	// Execute CLI
	cli.Execute(ctx)
}
