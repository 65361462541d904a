// Package app wires configuration into a running host: storage backends,
// the chain module, the contract runtime and the querier the adapters use.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain"
	"github.com/felixgeelhaar/babylon-bindings/internal/chain/store"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/example"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/runtime"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/storage"
	"github.com/felixgeelhaar/babylon-bindings/internal/host"
	hostgrpc "github.com/felixgeelhaar/babylon-bindings/internal/host/grpc"
	hostplugin "github.com/felixgeelhaar/babylon-bindings/internal/host/plugin"
	"github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/babylon-bindings/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/babylon-bindings/pkg/config"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

// ErrRemoteMode is returned for operations that need the in-process host.
var ErrRemoteMode = errors.New("contract runtime is not available against a remote host")

// Container holds the application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	DB    database.Connection
	Redis *redis.Client

	// Node is nil in remote mode.
	Node *host.Node
	// Querier answers queries, locally or through the remote host.
	Querier hostapi.Querier

	remote *hostgrpc.Client
	plugin *hostplugin.Loaded
}

// NewContainer builds a container for cfg. With BBN_HOST_ADDR or
// BBN_HOST_PLUGIN set, queries go to that host and no local state is opened.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	var err error
	if cfg.IsRemote() {
		err = c.initRemote(ctx)
	} else {
		err = c.initLocal(ctx)
	}
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) clientConfig() hostgrpc.ClientConfig {
	return hostgrpc.ClientConfig{
		MaxFailures:    uint32(c.Config.BreakerMaxFailures),
		BreakerTimeout: c.Config.BreakerTimeout,
		CallTimeout:    c.Config.QueryTimeout,
		Metrics:        c.Metrics,
		Logger:         observability.Component(c.Logger, "host-client"),
	}
}

func (c *Container) initRemote(ctx context.Context) error {
	cfg := c.Config
	if cfg.HostPlugin != "" {
		loaded, err := hostplugin.Load(ctx, cfg.HostPlugin, c.clientConfig())
		if err != nil {
			return err
		}
		c.plugin = loaded
		c.Querier = loaded.Querier
		if client, ok := loaded.Querier.(*hostgrpc.Client); ok {
			c.Health.Register("host", observability.PingChecker("host plugin", false, client.Ping))
		}
		c.Logger.Info("using host plugin", "binary", cfg.HostPlugin)
		return nil
	}

	client, err := hostgrpc.Dial(cfg.HostAddr, c.clientConfig())
	if err != nil {
		return err
	}
	c.remote = client
	c.Querier = client
	c.Health.Register("host", observability.PingChecker("host "+cfg.HostAddr, false, client.Ping))
	c.Logger.Info("using remote host", "addr", cfg.HostAddr)
	return nil
}

func (c *Container) initLocal(ctx context.Context) error {
	cfg := c.Config

	if cfg.ChainStore == config.StoreSQL || cfg.ContractStore == config.StoreSQL {
		conn, err := database.NewConnection(ctx, database.Config{
			URL:        cfg.DatabaseURL,
			SQLitePath: sqlitePath(cfg),
		})
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		c.DB = conn
		c.Health.Register("database", observability.PingChecker("database", false, conn.Ping))
	}

	if cfg.ChainStore == config.StoreRedis || cfg.ContractStore == config.StoreRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing REDIS_URL: %w", err)
		}
		c.Redis = redis.NewClient(opts)
		c.Health.Register("redis", observability.PingChecker("redis", false, func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		}))
	}

	var rc redis.UniversalClient
	if c.Redis != nil {
		rc = c.Redis
	}

	chainStore, err := store.Open(ctx, store.Kind(cfg.ChainStore), store.Backends{DB: c.DB, Redis: rc})
	if err != nil {
		return err
	}
	module := chain.NewModule(chainStore, observability.Component(c.Logger, "chain"))

	bank := host.NewBank()
	if cfg.StateFile != "" {
		if bank, err = c.applyGenesis(ctx, module, cfg.StateFile); err != nil {
			return err
		}
	}

	contracts, err := storage.NewFactory(ctx, storage.Kind(cfg.ContractStore), storage.Backends{DB: c.DB, Redis: rc})
	if err != nil {
		return err
	}
	caps, err := sdk.ParseCapabilities(cfg.Capabilities)
	if err != nil {
		return fmt.Errorf("BBN_CAPABILITIES: %w", err)
	}

	c.Node = host.NewNode(host.NodeConfig{
		Chain:        module,
		Bank:         bank,
		Storage:      contracts,
		ChainID:      cfg.ChainID,
		Capabilities: caps,
		Metrics:      c.Metrics,
		Logger:       c.Logger,
	})
	c.Querier = c.Node.Router

	c.Logger.Debug("local host ready",
		"chain_store", cfg.ChainStore,
		"contract_store", cfg.ContractStore,
		"capabilities", cfg.Capabilities,
	)
	return nil
}

// applyGenesis loads the state file and writes it unless the store already
// holds a chain. The bank is always seeded from the file.
func (c *Container) applyGenesis(ctx context.Context, module *chain.Module, path string) (*host.Bank, error) {
	g, err := chain.LoadGenesis(path)
	if err != nil {
		return nil, err
	}
	tip, err := module.Store().Tip(ctx)
	if err != nil {
		return nil, err
	}
	if tip == nil {
		if err := module.InitGenesis(ctx, g); err != nil {
			return nil, err
		}
	} else {
		c.Logger.Debug("chain already initialised, skipping genesis", "tip", tip.Height)
	}
	return host.NewBankFromGenesis(g), nil
}

func sqlitePath(cfg *config.Config) string {
	if cfg.SQLitePath != "" {
		return cfg.SQLitePath
	}
	if cfg.DatabaseURL == "" {
		return database.DefaultSQLitePath()
	}
	return ""
}

// QuerierWrapper returns the typed view of the container's querier.
func (c *Container) QuerierWrapper() hostapi.QuerierWrapper {
	return hostapi.NewQuerierWrapper(c.Querier)
}

// ExampleContract registers the example contract under label and returns
// its address. Registering is idempotent, so state saved by an earlier run
// becomes reachable again.
func (c *Container) ExampleContract(label string) (string, error) {
	if c.Node == nil {
		return "", ErrRemoteMode
	}
	contract := example.New()
	addr, err := runtime.ContractAddress(contract.Name(), label)
	if err != nil {
		return "", err
	}
	if _, err := c.Node.Registry.Get(addr); err == nil {
		return addr, nil
	}
	if err := c.Node.Registry.Register(addr, label, contract); err != nil {
		return "", err
	}
	return addr, nil
}

// Close releases every backend the container opened.
func (c *Container) Close() {
	if c.plugin != nil {
		c.plugin.Kill()
	}
	if c.remote != nil {
		if err := c.remote.Close(); err != nil {
			c.Logger.Warn("error closing host connection", "error", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		}
	}
}
