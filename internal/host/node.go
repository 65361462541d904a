package host

import (
	"log/slog"
	"time"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/runtime"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/internal/contract/storage"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

// Node wires a chain module, a bank and a contract executor behind one Router.
type Node struct {
	Chain    *chain.Module
	Router   *Router
	Registry *runtime.Registry
	Sandbox  *runtime.Sandbox
	Executor *runtime.Executor
}

// NodeConfig configures NewNode. Chain is required.
type NodeConfig struct {
	Chain        *chain.Module
	Bank         *Bank
	Storage      storage.Factory
	ChainID      string
	Capabilities sdk.CapabilitySet
	Metrics      observability.Metrics
	Logger       *slog.Logger
	// Height and Now seed the block environment contracts see.
	Height uint64
	Now    func() time.Time
}

func NewNode(cfg NodeConfig) *Node {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	router := NewRouter(RouterConfig{
		Chain:   cfg.Chain,
		Bank:    cfg.Bank,
		Metrics: cfg.Metrics,
		Logger:  observability.Component(cfg.Logger, "router"),
	})
	registry := runtime.NewRegistry(observability.Component(cfg.Logger, "registry"))
	sandbox := runtime.NewSandbox(runtime.SandboxConfig{
		Logger:  observability.Component(cfg.Logger, "sandbox"),
		Storage: cfg.Storage,
		Querier: router,
		ChainID: cfg.ChainID,
		Height:  cfg.Height,
		Now:     cfg.Now,
	})
	executor := runtime.NewExecutor(registry, sandbox, runtime.ExecutorConfig{
		Capabilities: cfg.Capabilities,
		Metrics:      cfg.Metrics,
		Logger:       observability.Component(cfg.Logger, "executor"),
	})
	router.AttachContracts(executor)

	return &Node{
		Chain:    cfg.Chain,
		Router:   router,
		Registry: registry,
		Sandbox:  sandbox,
		Executor: executor,
	}
}

// Querier returns the node's host querier wrapped for typed use.
func (n *Node) Querier() hostapi.QuerierWrapper {
	return hostapi.NewQuerierWrapper(n.Router)
}
