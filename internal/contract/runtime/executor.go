package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

// MaxQueryDepth bounds how deeply contracts may query each other.
const MaxQueryDepth = 10

// ErrQueryDepthExceeded is returned when nested smart queries go deeper than MaxQueryDepth.
var ErrQueryDepthExceeded = errors.New("query depth exceeded")

// Executor runs contract entry points with capability checks, storage
// isolation and per-call metrics.
type Executor struct {
	registry *Registry
	sandbox  *Sandbox
	caps     sdk.CapabilitySet
	metrics  observability.Metrics
	logger   *slog.Logger
}

// ExecutorConfig configures the executor behavior.
type ExecutorConfig struct {
	// Capabilities the host supports. Defaults to sdk.DefaultHostCapabilities.
	Capabilities sdk.CapabilitySet
	Metrics      observability.Metrics
	Logger       *slog.Logger
}

func NewExecutor(reg *Registry, sandbox *Sandbox, cfg ExecutorConfig) *Executor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.Capabilities == nil {
		cfg.Capabilities = sdk.DefaultHostCapabilities()
	}
	return &Executor{
		registry: reg,
		sandbox:  sandbox,
		caps:     cfg.Capabilities,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// Registry returns the contract registry the executor routes to.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Deploy registers contract under an address derived from its name and
// label, then instantiates it. A failed instantiation leaves no trace.
func (e *Executor) Deploy(ctx context.Context, contract sdk.Contract, label string, info sdk.MessageInfo, msg json.RawMessage) (string, *sdk.Response, error) {
	if err := e.checkCapabilities(contract.Name(), contract); err != nil {
		return "", nil, err
	}
	addr, err := ContractAddress(contract.Name(), label)
	if err != nil {
		return "", nil, err
	}
	if err := e.registry.Register(addr, label, contract); err != nil {
		return "", nil, err
	}

	resp, err := e.Instantiate(ctx, addr, info, msg)
	if err != nil {
		e.registry.Unregister(addr)
		return "", nil, err
	}
	return addr, resp, nil
}

// Instantiate runs the instantiate entry point of the contract at addr.
// Storage writes are committed only if it succeeds.
func (e *Executor) Instantiate(ctx context.Context, addr string, info sdk.MessageInfo, msg json.RawMessage) (resp *sdk.Response, err error) {
	timer := e.startTimer("instantiate", addr)
	defer func() { timer.Stop(outcome(err)) }()

	entry, err := e.registry.Get(addr)
	if err != nil {
		return nil, err
	}
	if entry.Instantiated {
		return nil, fmt.Errorf("%w: %s is already instantiated", sdk.ErrContractAlreadyExists, addr)
	}
	if err := e.checkCapabilities(addr, entry.Contract); err != nil {
		return nil, err
	}

	e.sandbox.AdvanceBlock()
	env := e.sandbox.Env(addr)
	deps, cache := e.sandbox.DepsMut(addr, contractCaps(entry.Contract))

	resp, err = entry.Contract.Instantiate(ctx, deps, env, info, msg)
	if err != nil {
		cache.Discard()
		e.logger.Warn("instantiate failed", "contract_addr", addr, "error", err)
		return nil, sdk.NewContractError(addr, "instantiate", err)
	}
	if err := cache.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing state of %s: %w", addr, err)
	}
	e.registry.markInstantiated(addr, info.Sender, env.Block.Time)

	e.logger.Info("contract instantiated",
		"contract_addr", addr,
		"sender", info.Sender,
		"height", env.Block.Height,
	)
	if resp == nil {
		resp = sdk.NewResponse()
	}
	return resp, nil
}

// Query runs the read-only query entry point of the contract at addr.
func (e *Executor) Query(ctx context.Context, addr string, msg json.RawMessage) (data hostapi.Binary, err error) {
	timer := e.startTimer("query", addr)
	defer func() { timer.Stop(outcome(err)) }()

	depth := queryDepth(ctx) + 1
	if depth > MaxQueryDepth {
		return nil, sdk.NewContractError(addr, "query", ErrQueryDepthExceeded)
	}
	ctx = context.WithValue(ctx, depthKey{}, depth)

	entry, err := e.registry.Get(addr)
	if err != nil {
		return nil, err
	}
	if err := e.checkCapabilities(addr, entry.Contract); err != nil {
		return nil, err
	}

	deps := e.sandbox.Deps(addr, contractCaps(entry.Contract))
	data, err = entry.Contract.Query(ctx, deps, e.sandbox.Env(addr), msg)
	if err != nil {
		return nil, sdk.NewContractError(addr, "query", err)
	}
	return data, nil
}

// ReadRaw returns the raw value stored under key by the contract at addr,
// or nil when the key is absent.
func (e *Executor) ReadRaw(ctx context.Context, addr string, key []byte) ([]byte, error) {
	if _, err := e.registry.Get(addr); err != nil {
		return nil, err
	}
	v, err := e.sandbox.ReadRaw(ctx, addr, key)
	if errors.Is(err, sdk.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (e *Executor) checkCapabilities(who string, contract sdk.Contract) error {
	if missing := e.caps.Missing(contractCaps(contract)); len(missing) > 0 {
		return &sdk.CapabilityError{ContractAddr: who, Missing: missing}
	}
	return nil
}

func (e *Executor) startTimer(entry, addr string) *observability.Timer {
	return observability.StartTimer(entry).
		WithLogger(e.logger.With("contract_addr", addr)).
		WithMetrics(e.metrics).
		WithNames(observability.MetricContractCalls, "").
		WithTags(observability.T("entry", entry))
}

func contractCaps(c sdk.Contract) sdk.CapabilitySet {
	return sdk.NewCapabilitySet(c.Capabilities())
}

type depthKey struct{}

func queryDepth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

func outcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, sdk.ErrContractNotFound),
		errors.Is(err, sdk.ErrContractAlreadyExists),
		errors.Is(err, sdk.ErrCapabilityNotSupported):
		return observability.OutcomeSystem
	default:
		return observability.OutcomeContract
	}
}
